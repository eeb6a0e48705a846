package payments

import (
	"time"

	"github.com/google/uuid"

	"stagepass/internal/bookings"
)

type InitializePaymentRequest struct {
	BookingID     string  `json:"booking_id" binding:"required,uuid"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"omitempty,oneof=CARD UPI NETBANKING WALLET"`
}

type PaymentResponse struct {
	ID                   uuid.UUID              `json:"id"`
	BookingID            uuid.UUID              `json:"booking_id"`
	Amount               float64                `json:"amount"`
	Status               bookings.PaymentStatus `json:"status"`
	PaymentMethod        string                 `json:"payment_method"`
	TransactionReference string                 `json:"transaction_reference"`
	PaidAt               *time.Time             `json:"paid_at,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
}

func toResponse(p *bookings.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                   p.ID,
		BookingID:            p.BookingID,
		Amount:               p.Amount,
		Status:               p.Status,
		PaymentMethod:        p.PaymentMethod,
		TransactionReference: p.TransactionReference,
		PaidAt:               p.PaidAt,
		CreatedAt:            p.CreatedAt,
	}
}
