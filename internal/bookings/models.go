package bookings

import (
	"time"

	"github.com/google/uuid"

	"stagepass/internal/seats"
)

type Booking struct {
	ID          uuid.UUID    `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;index;not null" json:"user_id"`
	EventID     uuid.UUID    `gorm:"type:uuid;index;not null" json:"event_id"`
	BookingRef  string       `gorm:"uniqueIndex;not null" json:"booking_ref"`
	Status      Status       `gorm:"type:varchar(20);check:status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'EXPIRED');default:'PENDING'" json:"status"`
	TotalAmount float64      `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Seats       []seats.Seat `gorm:"foreignKey:BookingID" json:"seats,omitempty"`
	Payment     *Payment     `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
	CancelledAt *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Payment lives alongside Booking so the booking side can preload it; the
// payments package operates on this type through its own repository.
type Payment struct {
	ID                   uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingID            uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"booking_id"`
	Amount               float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Status               PaymentStatus `gorm:"type:varchar(20);check:status IN ('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED');default:'PENDING'" json:"status"`
	PaymentMethod        string        `gorm:"not null;default:'CARD'" json:"payment_method"`
	TransactionReference string        `gorm:"uniqueIndex;not null" json:"transaction_reference"`
	PaidAt               *time.Time    `json:"paid_at,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

type CreateBookingRequest struct {
	UserID      string   `json:"user_id" binding:"required,uuid"`
	EventID     string   `json:"event_id" binding:"required,uuid"`
	SeatIDs     []string `json:"seat_ids" binding:"required,min=1,max=10,dive,uuid"`
	TotalAmount float64  `json:"total_amount" binding:"required,gt=0"`
}

type BookingResponse struct {
	ID          uuid.UUID            `json:"id"`
	UserID      uuid.UUID            `json:"user_id"`
	EventID     uuid.UUID            `json:"event_id"`
	BookingRef  string               `json:"booking_ref"`
	Status      Status               `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	Seats       []seats.SeatResponse `json:"seats,omitempty"`
	CancelledAt *time.Time           `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	resp := BookingResponse{
		ID:          b.ID,
		UserID:      b.UserID,
		EventID:     b.EventID,
		BookingRef:  b.BookingRef,
		Status:      b.Status,
		TotalAmount: b.TotalAmount,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
	}
	for _, seat := range b.Seats {
		resp.Seats = append(resp.Seats, seat.ToResponse())
	}
	return resp
}
