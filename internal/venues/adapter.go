package venues

import (
	"context"

	"github.com/google/uuid"
)

// Gate answers existence checks for event creation.
type Gate struct {
	repo Repository
}

func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

func (g *Gate) VenueExists(ctx context.Context, venueID uuid.UUID) error {
	_, err := g.repo.GetByID(ctx, venueID)
	return err
}
