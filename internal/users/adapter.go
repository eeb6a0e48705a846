package users

import (
	"context"

	"github.com/google/uuid"
)

// Gate answers existence checks for packages that only need to know a user is
// real.
type Gate struct {
	repo Repository
}

func NewGate(repo Repository) *Gate {
	return &Gate{repo: repo}
}

func (g *Gate) UserExists(ctx context.Context, userID uuid.UUID) error {
	_, err := g.repo.GetByID(ctx, userID)
	return err
}
