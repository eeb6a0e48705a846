package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stagepass/internal/refunds"
	"stagepass/internal/seats"
	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/cache"
	"stagepass/pkg/clock"
	"stagepass/pkg/logger"
)

// VenueLookup validates the venue an event is created against.
type VenueLookup interface {
	VenueExists(ctx context.Context, venueID uuid.UUID) error
}

type Service interface {
	CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventResponse, error)
	GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error)
	GetAllEvents(ctx context.Context) ([]EventResponse, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req *UpdateEventRequest) (*EventResponse, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// CancelEvent marks the event CANCELLED and publishes the cancellation so
	// the refund workers pick it up.
	CancelEvent(ctx context.Context, id uuid.UUID) error

	// RecomputeEventStatuses advances UPCOMING and ONGOING events along the
	// clock. CANCELLED is terminal. Returns how many events changed.
	RecomputeEventStatuses(ctx context.Context) (int, error)
}

type service struct {
	repo        Repository
	seatService seats.Service
	venues      VenueLookup
	publisher   refunds.Publisher
	cache       cache.Service
	cacheTTL    time.Duration
	clock       clock.Clock
	log         *logger.Logger
}

func NewService(repo Repository, seatService seats.Service, venues VenueLookup, publisher refunds.Publisher, cacheService cache.Service, cacheTTL time.Duration, clk clock.Clock) Service {
	return &service{
		repo:        repo,
		seatService: seatService,
		venues:      venues,
		publisher:   publisher,
		cache:       cacheService,
		cacheTTL:    cacheTTL,
		clock:       clk,
		log:         logger.GetDefault(),
	}
}

func (s *service) CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventResponse, error) {
	venueID, err := uuid.Parse(req.VenueID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid venue id")
	}
	if err := s.venues.VenueExists(ctx, venueID); err != nil {
		return nil, err
	}
	if !req.EndDateTime.After(req.StartDateTime) {
		return nil, apperrors.NewValidation("event must end after it starts")
	}

	event := &Event{
		Name:          req.Name,
		Description:   req.Description,
		VenueID:       venueID,
		StartDateTime: req.StartDateTime,
		EndDateTime:   req.EndDateTime,
		TicketPrice:   req.TicketPrice,
		TotalSeats:    req.NumberOfSeats,
		Status:        StatusUpcoming,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	if err := s.seatService.CreateSeatsForEvent(ctx, event.ID, req.NumberOfSeats); err != nil {
		return nil, err
	}

	resp := event.ToResponse(int64(req.NumberOfSeats))
	return &resp, nil
}

func (s *service) GetEventByID(ctx context.Context, id uuid.UUID) (*EventResponse, error) {
	var event Event
	if s.cache != nil {
		err := s.cache.GetOrSet(ctx, cache.EventKey(id.String()), s.cacheTTL, func() (interface{}, error) {
			return s.repo.GetByID(ctx, id)
		}, &event)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, err
			}
			loaded, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			event = *loaded
		}
	} else {
		loaded, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		event = *loaded
	}

	available, err := s.seatService.CountAvailable(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse(available)
	return &resp, nil
}

func (s *service) GetAllEvents(ctx context.Context) ([]EventResponse, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]EventResponse, 0, len(all))
	for i := range all {
		event := &all[i]
		available, err := s.seatService.CountAvailable(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		responses = append(responses, event.ToResponse(available))
	}
	return responses, nil
}

func (s *service) UpdateEvent(ctx context.Context, id uuid.UUID, req *UpdateEventRequest) (*EventResponse, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == StatusCancelled || event.Status == StatusCompleted {
		return nil, apperrors.NewConflict("event is %s and cannot be updated", event.Status)
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.TicketPrice != nil {
		event.TicketPrice = *req.TicketPrice
	}
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, id)

	available, err := s.seatService.CountAvailable(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := event.ToResponse(available)
	return &resp, nil
}

func (s *service) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	hasBookings, err := s.repo.HasBookings(ctx, id)
	if err != nil {
		return err
	}
	if hasBookings {
		return apperrors.NewConflict("event has bookings and cannot be deleted, cancel it instead")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *service) CancelEvent(ctx context.Context, id uuid.UUID) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if event.Status == StatusCancelled {
		return nil
	}
	if event.Status == StatusCompleted {
		return apperrors.NewConflict("completed events cannot be cancelled")
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)

	// Publish after the status change is durable. If the broker is down the
	// stuck-refund sweep still finds this event and recovers.
	if s.publisher != nil {
		msg := &refunds.EventCancelledMessage{
			EventID:     id,
			EventName:   event.Name,
			CancelledAt: s.clock.Now(),
		}
		if err := s.publisher.PublishEventCancelled(ctx, msg); err != nil {
			s.log.WithError(err).Error("failed to publish event cancellation", "event_id", id)
		}
	}
	return nil
}

func (s *service) RecomputeEventStatuses(ctx context.Context) (int, error) {
	now := s.clock.Now()
	changed := 0

	upcoming, err := s.repo.FindByStatus(ctx, StatusUpcoming)
	if err != nil {
		return 0, err
	}
	ongoing, err := s.repo.FindByStatus(ctx, StatusOngoing)
	if err != nil {
		return 0, err
	}

	for i := range upcoming {
		event := &upcoming[i]
		next := event.Status
		switch {
		case !now.Before(event.EndDateTime):
			next = StatusCompleted
		case !now.Before(event.StartDateTime):
			next = StatusOngoing
		}
		if next == event.Status {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, event.ID, next); err != nil {
			return changed, err
		}
		s.invalidateCache(ctx, event.ID)
		changed++
	}

	for i := range ongoing {
		event := &ongoing[i]
		if now.Before(event.EndDateTime) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, event.ID, StatusCompleted); err != nil {
			return changed, err
		}
		s.invalidateCache(ctx, event.ID)
		changed++
	}
	return changed, nil
}

func (s *service) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.EventKey(id.String()), cache.EventSeatsKey(id.String())); err != nil {
		s.log.WithError(err).Warn("failed to invalidate event cache", "event_id", id)
	}
}
