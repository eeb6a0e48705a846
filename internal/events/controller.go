package events

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

func (c *Controller) CreateEvent(ctx *gin.Context) {
	var req CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}

	event, err := c.service.CreateEvent(ctx.Request.Context(), &req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusCreated, "Event created successfully", event)
}

func (c *Controller) GetEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	event, err := c.service.GetEventByID(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Event fetched successfully", event)
}

func (c *Controller) GetAllEvents(ctx *gin.Context) {
	events, err := c.service.GetAllEvents(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Events fetched successfully", events)
}

func (c *Controller) UpdateEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	var req UpdateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}

	event, err := c.service.UpdateEvent(ctx.Request.Context(), eventID, &req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Event updated successfully", event)
}

func (c *Controller) DeleteEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	if err := c.service.DeleteEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Event deleted successfully", nil)
}

func (c *Controller) CancelEvent(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("eventId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid event id"))
		return
	}

	if err := c.service.CancelEvent(ctx.Request.Context(), eventID); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Event cancelled successfully", nil)
}
