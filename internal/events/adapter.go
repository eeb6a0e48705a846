package events

import (
	"context"

	"github.com/google/uuid"

	"stagepass/internal/bookings"
	"stagepass/internal/seats"
)

// SeatGate exposes events to the seats package.
type SeatGate struct {
	repo Repository
}

func NewSeatGate(repo Repository) *SeatGate {
	return &SeatGate{repo: repo}
}

func (g *SeatGate) LookupEvent(ctx context.Context, eventID uuid.UUID) (*seats.EventInfo, error) {
	event, err := g.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &seats.EventInfo{ID: event.ID, Name: event.Name}, nil
}

// BookingGate exposes events to the bookings package.
type BookingGate struct {
	repo Repository
}

func NewBookingGate(repo Repository) *BookingGate {
	return &BookingGate{repo: repo}
}

func (g *BookingGate) LookupEvent(ctx context.Context, eventID uuid.UUID) (*bookings.EventSummary, error) {
	event, err := g.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &bookings.EventSummary{
		ID:       event.ID,
		Name:     event.Name,
		Sellable: event.Status.IsSellable(),
	}, nil
}

// Directory exposes cancelled events to the refund recovery sweep.
type Directory struct {
	repo Repository
}

func NewDirectory(repo Repository) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) ListCancelledEventIDs(ctx context.Context) ([]uuid.UUID, error) {
	cancelled, err := d.repo.FindByStatus(ctx, StatusCancelled)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(cancelled))
	for i := range cancelled {
		ids = append(ids, cancelled[i].ID)
	}
	return ids, nil
}
