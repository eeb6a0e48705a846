package venues

import (
	"time"

	"github.com/google/uuid"
)

// Venue hosts events. Seat-map geometry is opaque to this system; a venue only
// carries a display address and a default capacity hint.
type Venue struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Address   string    `gorm:"not null;size:500" json:"address"`
	Capacity  int       `gorm:"not null;check:capacity > 0" json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Venue
func (Venue) TableName() string {
	return "venues"
}

type CreateVenueRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Address  string `json:"address" binding:"required,min=5,max=500"`
	Capacity int    `json:"capacity" binding:"required,min=1,max=200000"`
}

type VenueResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Capacity int    `json:"capacity"`
}

func (v *Venue) ToResponse() VenueResponse {
	return VenueResponse{
		ID:       v.ID.String(),
		Name:     v.Name,
		Address:  v.Address,
		Capacity: v.Capacity,
	}
}
