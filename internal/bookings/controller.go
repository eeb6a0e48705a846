package bookings

import (
	"net/http"
	"strconv"

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

func (c *Controller) CreateBooking(ctx *gin.Context) {
	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}

	userID, _ := uuid.Parse(req.UserID)
	eventID, _ := uuid.Parse(req.EventID)
	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs))
	for _, raw := range req.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(ctx, apperrors.NewValidation("invalid seat id: %s", raw))
			return
		}
		seatIDs = append(seatIDs, id)
	}

	booking, err := c.service.CreatePendingBooking(ctx.Request.Context(), userID, eventID, seatIDs, req.TotalAmount)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusCreated, "Booking created successfully", booking)
}

func (c *Controller) GetBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	booking, err := c.service.GetBookingByID(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Booking fetched successfully", booking)
}

func (c *Controller) GetBookingByReference(ctx *gin.Context) {
	ref := ctx.Param("ref")
	booking, err := c.service.GetBookingByReference(ctx.Request.Context(), ref)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Booking fetched successfully", booking)
}

func (c *Controller) GetUserBookings(ctx *gin.Context) {
	userID, err := uuid.Parse(ctx.Param("userId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid user id"))
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	bookings, total, err := c.service.GetUserBookings(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Bookings fetched successfully", gin.H{
		"bookings": bookings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (c *Controller) ConfirmBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	if err := c.service.ConfirmBooking(ctx.Request.Context(), bookingID); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Booking confirmed successfully", nil)
}

func (c *Controller) CancelBooking(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	if err := c.service.CancelBooking(ctx.Request.Context(), bookingID); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Booking cancelled successfully", nil)
}
