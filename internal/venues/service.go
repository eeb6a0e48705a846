package venues

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service interface {
	CreateVenue(ctx context.Context, req CreateVenueRequest) (*VenueResponse, error)
	GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	GetAllVenues(ctx context.Context) ([]VenueResponse, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateVenue(ctx context.Context, req CreateVenueRequest) (*VenueResponse, error) {
	venue := &Venue{
		Name:     req.Name,
		Address:  req.Address,
		Capacity: req.Capacity,
	}

	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	resp := venue.ToResponse()
	return &resp, nil
}

func (s *service) GetVenueByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetAllVenues(ctx context.Context) ([]VenueResponse, error) {
	venuesList, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	responses := make([]VenueResponse, 0, len(venuesList))
	for i := range venuesList {
		responses = append(responses, venuesList[i].ToResponse())
	}
	return responses, nil
}
