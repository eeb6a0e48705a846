package seats

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"stagepass/internal/shared/apperrors"
	"stagepass/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetEventSeats(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}
	onlyAvailable := ctx.Query("available") == "true"

	seatList, err := c.service.GetSeatsByEvent(ctx.Request.Context(), eventID, onlyAvailable)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Seats fetched successfully", seatList)
}

func (c *Controller) HoldSeats(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}
	userID, seatIDs, err := req.parsed()
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	held, err := c.service.HoldSeats(ctx.Request.Context(), eventID, userID, seatIDs)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Seats held successfully", held)
}

func (c *Controller) ReleaseSeats(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	var req HoldSeatsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}
	userID, seatIDs, err := req.parsed()
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	if err := c.service.ReleaseSeats(ctx.Request.Context(), eventID, userID, seatIDs); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Seats released successfully", nil)
}
