package payments

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

func (c *Controller) InitializePayment(ctx *gin.Context) {
	var req InitializePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid request: %v", err))
		return
	}
	bookingID, _ := uuid.Parse(req.BookingID)

	payment, err := c.service.InitializePayment(ctx.Request.Context(), bookingID, req.Amount, req.PaymentMethod)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusCreated, "Payment initialized successfully", payment)
}

func (c *Controller) GetPayment(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	payment, err := c.service.GetPaymentByBookingID(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Payment fetched successfully", payment)
}

func (c *Controller) VerifyPayment(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	payment, err := c.service.VerifyPayment(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Payment verified successfully", payment)
}

func (c *Controller) RefundPayment(ctx *gin.Context) {
	bookingID, err := uuid.Parse(ctx.Param("bookingId"))
	if err != nil {
		response.RespondError(ctx, apperrors.NewValidation("invalid booking id"))
		return
	}

	payment, err := c.service.RefundPayment(ctx.Request.Context(), bookingID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, http.StatusOK, "Payment refunded successfully", payment)
}
