package events

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	Description   string    `json:"description"`
	VenueID       uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`
	StartDateTime time.Time `gorm:"not null" json:"start_date_time"`
	EndDateTime   time.Time `gorm:"not null" json:"end_date_time"`
	TicketPrice   float64   `gorm:"type:decimal(10,2);not null" json:"ticket_price"`
	TotalSeats    int       `gorm:"not null" json:"total_seats"`
	Status        Status    `gorm:"type:varchar(20);check:status IN ('UPCOMING', 'ONGOING', 'COMPLETED', 'CANCELLED');default:'UPCOMING'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateEventRequest struct {
	Name          string    `json:"name" binding:"required,min=3,max=200"`
	Description   string    `json:"description" binding:"max=2000"`
	VenueID       string    `json:"venue_id" binding:"required,uuid"`
	StartDateTime time.Time `json:"start_date_time" binding:"required,futuredate"`
	EndDateTime   time.Time `json:"end_date_time" binding:"required,gtfield=StartDateTime"`
	TicketPrice   float64   `json:"ticket_price" binding:"required,gt=0"`
	NumberOfSeats int       `json:"number_of_seats" binding:"required,min=1,max=1000"`
}

type UpdateEventRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=3,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=2000"`
	TicketPrice *float64 `json:"ticket_price" binding:"omitempty,gt=0"`
}

type EventResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	VenueID        uuid.UUID `json:"venue_id"`
	StartDateTime  time.Time `json:"start_date_time"`
	EndDateTime    time.Time `json:"end_date_time"`
	TicketPrice    float64   `json:"ticket_price"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int64     `json:"available_seats"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e *Event) ToResponse(availableSeats int64) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		Description:    e.Description,
		VenueID:        e.VenueID,
		StartDateTime:  e.StartDateTime,
		EndDateTime:    e.EndDateTime,
		TicketPrice:    e.TicketPrice,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: availableSeats,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt,
	}
}
