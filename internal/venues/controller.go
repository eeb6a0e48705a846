package venues

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stagepass/internal/shared/apperrors"
	"stagepass/internal/shared/utils/response"
)

type Controller interface {
	CreateVenue(c *gin.Context)
	GetVenue(c *gin.Context)
	GetAllVenues(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateVenue(c *gin.Context) {
	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, apperrors.NewValidation("invalid request: %v", err))
		return
	}

	venue, err := ctrl.service.CreateVenue(c.Request.Context(), req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, http.StatusCreated, "Venue created successfully", venue)
}

func (ctrl *controller) GetVenue(c *gin.Context) {
	venueID, err := uuid.Parse(c.Param("venueId"))
	if err != nil {
		response.RespondError(c, apperrors.NewValidation("invalid venue id"))
		return
	}

	venue, err := ctrl.service.GetVenueByID(c.Request.Context(), venueID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, http.StatusOK, "Venue retrieved successfully", venue.ToResponse())
}

func (ctrl *controller) GetAllVenues(c *gin.Context) {
	result, err := ctrl.service.GetAllVenues(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, http.StatusOK, "Venues retrieved successfully", result)
}
