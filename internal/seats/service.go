package seats

import (
	"bytes"
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/cache"
	"stagepass/pkg/clock"
	"stagepass/pkg/logger"
)

// EventLookup is the slice of the events package this package needs. The
// events package provides an adapter so seats never imports events directly.
type EventLookup interface {
	LookupEvent(ctx context.Context, eventID uuid.UUID) (*EventInfo, error)
}

// EventInfo carries the event fields seat operations validate against.
type EventInfo struct {
	ID   uuid.UUID
	Name string
}

// UserLookup resolves the holding user without importing the users package
// wholesale.
type UserLookup interface {
	UserExists(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	CreateSeatsForEvent(ctx context.Context, eventID uuid.UUID, numberOfSeats int) error
	GetSeatsByEvent(ctx context.Context, eventID uuid.UUID, onlyAvailable bool) ([]SeatResponse, error)
	CountAvailable(ctx context.Context, eventID uuid.UUID) (int64, error)

	HoldSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) ([]SeatResponse, error)
	ReleaseSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) error

	// ReleaseExpiredHolds releases every seat whose hold started before
	// cutoff, regardless of holder, and reports how many were released.
	ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int, error)

	// ValidateAndConsumeForBooking verifies that every seat is currently held
	// by userID for eventID and returns the locked rows for booking linkage.
	ValidateAndConsumeForBooking(ctx context.Context, seatIDs []uuid.UUID, userID, eventID uuid.UUID) ([]Seat, error)

	// LinkSeatsToBooking attaches seats to a booking. Every seat must still be
	// held by userID; a hold lost to expiry or a rival in the meantime is a
	// conflict.
	LinkSeatsToBooking(ctx context.Context, seatIDs []uuid.UUID, userID, bookingID uuid.UUID) error
	MarkSeatsBooked(ctx context.Context, bookingID uuid.UUID) error
	ReleaseSeatsForBooking(ctx context.Context, bookingID uuid.UUID) (int, error)

	// InTransaction returns a Service whose writes join tx, so the booking flow
	// can persist seat and booking rows in one transaction.
	InTransaction(tx *gorm.DB) Service
}

type service struct {
	repo     Repository
	events   EventLookup
	users    UserLookup
	cache    cache.Service
	cacheTTL time.Duration
	clock    clock.Clock
	log      *logger.Logger
}

func NewService(repo Repository, events EventLookup, users UserLookup, cacheService cache.Service, cacheTTL time.Duration, clk clock.Clock) Service {
	return &service{
		repo:     repo,
		events:   events,
		users:    users,
		cache:    cacheService,
		cacheTTL: cacheTTL,
		clock:    clk,
		log:      logger.GetDefault(),
	}
}

func (s *service) CreateSeatsForEvent(ctx context.Context, eventID uuid.UUID, numberOfSeats int) error {
	if numberOfSeats <= 0 {
		return apperrors.NewValidation("number of seats must be positive")
	}

	rows := make([]Seat, 0, numberOfSeats)
	for n := 1; n <= numberOfSeats; n++ {
		rows = append(rows, Seat{
			EventID:    eventID,
			SeatNumber: n,
			RowName:    "A",
			Status:     StatusAvailable,
		})
	}
	if err := s.repo.CreateSeats(ctx, rows); err != nil {
		return err
	}
	s.invalidateEventCache(ctx, eventID)
	return nil
}

func (s *service) GetSeatsByEvent(ctx context.Context, eventID uuid.UUID, onlyAvailable bool) ([]SeatResponse, error) {
	if _, err := s.events.LookupEvent(ctx, eventID); err != nil {
		return nil, err
	}

	all, err := s.loadEventSeats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	responses := make([]SeatResponse, 0, len(all))
	for _, seat := range all {
		if onlyAvailable && seat.Status != StatusAvailable {
			continue
		}
		responses = append(responses, seat.ToResponse())
	}
	return responses, nil
}

func (s *service) CountAvailable(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return s.repo.CountByEventIDAndStatus(ctx, eventID, StatusAvailable)
}

func (s *service) HoldSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) ([]SeatResponse, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.events.LookupEvent(ctx, eventID); err != nil {
		return nil, err
	}
	seatIDs = dedupeAndSort(seatIDs)

	var held []Seat
	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		locked, err := txRepo.GetByIDsForUpdate(ctx, seatIDs)
		if err != nil {
			return err
		}
		if len(locked) != len(seatIDs) {
			return apperrors.NewNotFound("one or more seats")
		}

		now := s.clock.Now()
		toSave := make([]*Seat, 0, len(locked))
		for i := range locked {
			seat := &locked[i]
			if seat.EventID != eventID {
				return apperrors.NewValidation("seat %d does not belong to this event", seat.SeatNumber)
			}
			if !seat.IsAvailable() && !seat.IsHeldBy(userID) {
				return apperrors.NewConflict("seat %d is not available", seat.SeatNumber)
			}
			seat.Status = StatusHeld
			seat.HeldAt = &now
			seat.HeldByUserID = &userID
			toSave = append(toSave, seat)
		}
		if err := txRepo.SaveAll(ctx, toSave); err != nil {
			return err
		}
		held = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateEventCache(ctx, eventID)
	responses := make([]SeatResponse, 0, len(held))
	for _, seat := range held {
		responses = append(responses, seat.ToResponse())
	}
	return responses, nil
}

func (s *service) ReleaseSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) error {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return err
	}
	if _, err := s.events.LookupEvent(ctx, eventID); err != nil {
		return err
	}
	seatIDs = dedupeAndSort(seatIDs)

	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		locked, err := txRepo.GetByIDsForUpdate(ctx, seatIDs)
		if err != nil {
			return err
		}
		if len(locked) != len(seatIDs) {
			return apperrors.NewNotFound("one or more seats")
		}

		toSave := make([]*Seat, 0, len(locked))
		for i := range locked {
			seat := &locked[i]
			if seat.EventID != eventID {
				return apperrors.NewValidation("seat %d does not belong to this event", seat.SeatNumber)
			}
			if !seat.IsHeldBy(userID) {
				return apperrors.NewValidation("cannot release seat %d: you do not hold it", seat.SeatNumber)
			}
			seat.clearHold()
			toSave = append(toSave, seat)
		}
		return txRepo.SaveAll(ctx, toSave)
	})
	if err != nil {
		return err
	}

	s.invalidateEventCache(ctx, eventID)
	return nil
}

func (s *service) ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int, error) {
	released := 0
	affectedEvents := make(map[uuid.UUID]struct{})

	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		expired, err := txRepo.FindExpiredHolds(ctx, cutoff)
		if err != nil {
			return err
		}
		if len(expired) == 0 {
			return nil
		}

		toSave := make([]*Seat, 0, len(expired))
		for i := range expired {
			seat := &expired[i]
			affectedEvents[seat.EventID] = struct{}{}
			seat.clearHold()
			toSave = append(toSave, seat)
		}
		if err := txRepo.SaveAll(ctx, toSave); err != nil {
			return err
		}
		released = len(toSave)
		return nil
	})
	if err != nil {
		return 0, err
	}

	for eventID := range affectedEvents {
		s.invalidateEventCache(ctx, eventID)
	}
	return released, nil
}

func (s *service) ValidateAndConsumeForBooking(ctx context.Context, seatIDs []uuid.UUID, userID, eventID uuid.UUID) ([]Seat, error) {
	seatIDs = dedupeAndSort(seatIDs)

	var validated []Seat
	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		locked, err := txRepo.GetByIDsForUpdate(ctx, seatIDs)
		if err != nil {
			return err
		}
		if len(locked) != len(seatIDs) {
			return apperrors.NewNotFound("one or more seats")
		}
		for i := range locked {
			seat := &locked[i]
			if seat.EventID != eventID {
				return apperrors.NewValidation("seat %d does not belong to this event", seat.SeatNumber)
			}
			if !seat.IsHeldBy(userID) {
				return apperrors.NewConflict("seat %d is not currently held by you", seat.SeatNumber)
			}
		}
		validated = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return validated, nil
}

func (s *service) LinkSeatsToBooking(ctx context.Context, seatIDs []uuid.UUID, userID, bookingID uuid.UUID) error {
	seatIDs = dedupeAndSort(seatIDs)
	var eventID uuid.UUID

	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		locked, err := txRepo.GetByIDsForUpdate(ctx, seatIDs)
		if err != nil {
			return err
		}
		if len(locked) != len(seatIDs) {
			return apperrors.NewNotFound("one or more seats")
		}

		toSave := make([]*Seat, 0, len(locked))
		for i := range locked {
			seat := &locked[i]
			if !seat.IsHeldBy(userID) {
				return apperrors.NewConflict("seat %d is no longer held by you", seat.SeatNumber)
			}
			eventID = seat.EventID
			seat.BookingID = &bookingID
			toSave = append(toSave, seat)
		}
		return txRepo.SaveAll(ctx, toSave)
	})
	if err != nil {
		return err
	}

	s.invalidateEventCache(ctx, eventID)
	return nil
}

func (s *service) MarkSeatsBooked(ctx context.Context, bookingID uuid.UUID) error {
	return s.transitionBookingSeats(ctx, bookingID, func(seat *Seat) {
		seat.Status = StatusBooked
		seat.HeldAt = nil
		seat.HeldByUserID = nil
	})
}

func (s *service) ReleaseSeatsForBooking(ctx context.Context, bookingID uuid.UUID) (int, error) {
	count := 0
	err := s.transitionBookingSeats(ctx, bookingID, func(seat *Seat) {
		count++
		seat.clearHold()
	})
	return count, err
}

func (s *service) InTransaction(tx *gorm.DB) Service {
	bound := *s
	bound.repo = NewRepository(tx)
	return &bound
}

func (s *service) transitionBookingSeats(ctx context.Context, bookingID uuid.UUID, apply func(*Seat)) error {
	affectedEvents := make(map[uuid.UUID]struct{})
	err := s.repo.WithTx(ctx, func(txRepo Repository) error {
		linked, err := txRepo.GetByBookingIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		toSave := make([]*Seat, 0, len(linked))
		for i := range linked {
			seat := &linked[i]
			affectedEvents[seat.EventID] = struct{}{}
			apply(seat)
			toSave = append(toSave, seat)
		}
		if len(toSave) == 0 {
			return nil
		}
		return txRepo.SaveAll(ctx, toSave)
	})
	if err != nil {
		return err
	}
	for eventID := range affectedEvents {
		s.invalidateEventCache(ctx, eventID)
	}
	return nil
}

func (s *service) loadEventSeats(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	if s.cache == nil {
		return s.repo.GetByEventID(ctx, eventID)
	}

	var result []Seat
	key := cache.EventSeatsKey(eventID.String())
	err := s.cache.GetOrSet(ctx, key, s.cacheTTL, func() (interface{}, error) {
		return s.repo.GetByEventID(ctx, eventID)
	}, &result)
	if err != nil {
		// cache trouble never blocks reads
		return s.repo.GetByEventID(ctx, eventID)
	}
	return result, nil
}

func (s *service) invalidateEventCache(ctx context.Context, eventID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx,
		cache.EventKey(eventID.String()),
		cache.EventSeatsKey(eventID.String()),
	); err != nil {
		s.log.WithError(err).Warn("failed to invalidate seat cache", "event_id", eventID)
	}
}

// dedupeAndSort orders seat ids deterministically so concurrent transactions
// lock overlapping sets in the same order.
func dedupeAndSort(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	sort.Slice(unique, func(i, j int) bool {
		return bytes.Compare(unique[i][:], unique[j][:]) < 0
	})
	return unique
}
