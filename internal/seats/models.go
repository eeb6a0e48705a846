package seats

import (
	"time"

	"github.com/google/uuid"

	"stagepass/internal/shared/apperrors"
)

// Seat is the unit of exclusive locking. Invariants:
// HELD implies held_at and held_by_user_id are set; BOOKED implies booking_id
// is set; AVAILABLE implies all three are null. Version is a monotonic counter
// compared-and-incremented on every save as a detector for writes that bypass
// the row lock.
type Seat struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID      uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_event_seat" json:"event_id"`
	SeatNumber   int        `gorm:"not null;uniqueIndex:idx_event_seat" json:"seat_number"`
	RowName      string     `gorm:"not null;default:'A'" json:"row_name"`
	Status       Status     `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HELD', 'BOOKED');default:'AVAILABLE'" json:"status"`
	HeldAt       *time.Time `json:"held_at,omitempty"`
	HeldByUserID *uuid.UUID `gorm:"type:uuid;index" json:"held_by_user_id,omitempty"`
	BookingID    *uuid.UUID `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	Version      int        `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

// IsHeldBy reports whether the seat is currently held by the given user.
func (s *Seat) IsHeldBy(userID uuid.UUID) bool {
	return s.Status == StatusHeld && s.HeldByUserID != nil && *s.HeldByUserID == userID
}

// clearHold resets the seat to the available pool, unlinking holder and booking.
func (s *Seat) clearHold() {
	s.Status = StatusAvailable
	s.HeldAt = nil
	s.HeldByUserID = nil
	s.BookingID = nil
}

// HoldSeatsRequest covers both hold and release calls
type HoldSeatsRequest struct {
	UserID  string   `json:"user_id" binding:"required,uuid"`
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,max=10,dive,uuid"`
}

func (r *HoldSeatsRequest) parsed() (uuid.UUID, []uuid.UUID, error) {
	userID, err := uuid.Parse(r.UserID)
	if err != nil {
		return uuid.Nil, nil, apperrors.NewValidation("invalid user id")
	}
	seatIDs := make([]uuid.UUID, 0, len(r.SeatIDs))
	for _, raw := range r.SeatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, nil, apperrors.NewValidation("invalid seat id: %s", raw)
		}
		seatIDs = append(seatIDs, id)
	}
	return userID, seatIDs, nil
}

// SeatResponse for API responses
type SeatResponse struct {
	ID         string     `json:"id"`
	SeatNumber int        `json:"seat_number"`
	RowName    string     `json:"row_name"`
	Status     string     `json:"status"`
	HeldAt     *time.Time `json:"held_at,omitempty"`
}

func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:         s.ID.String(),
		SeatNumber: s.SeatNumber,
		RowName:    s.RowName,
		Status:     s.Status.String(),
		HeldAt:     s.HeldAt,
	}
}
