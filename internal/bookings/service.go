package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stagepass/internal/seats"
	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/clock"
	"stagepass/pkg/logger"
)

// EventLookup is the slice of the events package booking creation validates
// against; the events package provides an adapter.
type EventLookup interface {
	LookupEvent(ctx context.Context, eventID uuid.UUID) (*EventSummary, error)
}

type EventSummary struct {
	ID       uuid.UUID
	Name     string
	Sellable bool
}

type UserLookup interface {
	UserExists(ctx context.Context, userID uuid.UUID) error
}

type Service interface {
	// CreatePendingBooking turns a set of seats held by the user into a new
	// PENDING booking and links the seats to it.
	CreatePendingBooking(ctx context.Context, userID, eventID uuid.UUID, seatIDs []uuid.UUID, totalAmount float64) (*BookingResponse, error)

	GetBookingByID(ctx context.Context, id uuid.UUID) (*BookingResponse, error)
	GetBookingByReference(ctx context.Context, ref string) (*BookingResponse, error)
	GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookingResponse, int64, error)

	// ConfirmBooking moves a PENDING booking with a COMPLETED payment to
	// CONFIRMED and marks its seats BOOKED. Confirming an already CONFIRMED
	// booking is a no-op.
	ConfirmBooking(ctx context.Context, id uuid.UUID) error

	// CancelBooking cancels a PENDING booking at the holder's request.
	// CONFIRMED bookings are rejected here; they go through the refund path.
	CancelBooking(ctx context.Context, id uuid.UUID) error

	// CancelRefundedBooking force-cancels after a successful refund, skipping
	// the CONFIRMED guard.
	CancelRefundedBooking(ctx context.Context, id uuid.UUID) error

	ExpirePendingBookingsBefore(ctx context.Context, cutoff time.Time) (int, error)
	ExpirePendingBookingsForEvent(ctx context.Context, eventID uuid.UUID) (int, error)
}

type service struct {
	repo        Repository
	seatService seats.Service
	events      EventLookup
	users       UserLookup
	clock       clock.Clock
	maxAttempts int
	log         *logger.Logger
}

func NewService(repo Repository, seatService seats.Service, events EventLookup, users UserLookup, clk clock.Clock, referenceMaxAttempts int) Service {
	return &service{
		repo:        repo,
		seatService: seatService,
		events:      events,
		users:       users,
		clock:       clk,
		maxAttempts: referenceMaxAttempts,
		log:         logger.GetDefault(),
	}
}

func (s *service) CreatePendingBooking(ctx context.Context, userID, eventID uuid.UUID, seatIDs []uuid.UUID, totalAmount float64) (*BookingResponse, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, err
	}
	event, err := s.events.LookupEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.Sellable {
		return nil, apperrors.NewConflict("event is not open for booking")
	}

	ref, err := s.uniqueReference(ctx)
	if err != nil {
		return nil, err
	}

	booking := &Booking{
		UserID:      userID,
		EventID:     eventID,
		BookingRef:  ref,
		Status:      StatusPending,
		TotalAmount: totalAmount,
	}

	// Seat validation, booking creation and seat linkage commit together; the
	// seats stay row-locked until the booking row exists, so a hold cannot be
	// swept or re-taken in between.
	var heldSeats []seats.Seat
	err = s.repo.WithTx(ctx, func(txRepo Repository, tx *gorm.DB) error {
		seatService := s.seatsIn(tx)
		held, err := seatService.ValidateAndConsumeForBooking(ctx, seatIDs, userID, eventID)
		if err != nil {
			return err
		}
		if err := txRepo.Create(ctx, booking); err != nil {
			return err
		}
		if err := seatService.LinkSeatsToBooking(ctx, seatIDs, userID, booking.ID); err != nil {
			return err
		}
		heldSeats = held
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), eventID.String(), userID.String())
	booking.Seats = heldSeats
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBookingByID(ctx context.Context, id uuid.UUID) (*BookingResponse, error) {
	booking, err := s.repo.GetByIDWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetBookingByReference(ctx context.Context, ref string) (*BookingResponse, error) {
	booking, err := s.repo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	resp := booking.ToResponse()
	return &resp, nil
}

func (s *service) GetUserBookings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]BookingResponse, int64, error) {
	if err := s.users.UserExists(ctx, userID); err != nil {
		return nil, 0, err
	}
	records, total, err := s.repo.GetByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]BookingResponse, 0, len(records))
	for i := range records {
		responses = append(responses, records[i].ToResponse())
	}
	return responses, total, nil
}

func (s *service) ConfirmBooking(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(txRepo Repository, tx *gorm.DB) error {
		booking, err := txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status == StatusConfirmed {
			return nil
		}
		if booking.Status != StatusPending {
			return apperrors.NewConflict("booking is %s and cannot be confirmed", booking.Status)
		}

		payment, err := txRepo.GetPaymentByBookingID(ctx, id)
		if err != nil {
			return err
		}
		if payment == nil || payment.Status != PaymentStatusCompleted {
			return apperrors.NewConflict("booking has no completed payment")
		}

		booking.Status = StatusConfirmed
		if err := txRepo.Save(ctx, booking); err != nil {
			return err
		}
		// CONFIRMED and the seats' BOOKED transition commit or roll back as one
		return s.seatsIn(tx).MarkSeatsBooked(ctx, id)
	})
}

func (s *service) CancelBooking(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(txRepo Repository, tx *gorm.DB) error {
		booking, err := txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status == StatusConfirmed {
			return apperrors.NewConflict("confirmed bookings cannot be cancelled directly, contact support for refunds")
		}
		if booking.Status != StatusPending {
			return apperrors.NewConflict("booking is %s and cannot be cancelled", booking.Status)
		}

		now := s.clock.Now()
		booking.Status = StatusCancelled
		booking.CancelledAt = &now
		if err := txRepo.Save(ctx, booking); err != nil {
			return err
		}
		_, err = s.seatsIn(tx).ReleaseSeatsForBooking(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.log.LogBookingCancelled(ctx, id.String())
	return nil
}

func (s *service) CancelRefundedBooking(ctx context.Context, id uuid.UUID) error {
	err := s.repo.WithTx(ctx, func(txRepo Repository, tx *gorm.DB) error {
		booking, err := txRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if booking.Status == StatusCancelled {
			return nil
		}

		now := s.clock.Now()
		booking.Status = StatusCancelled
		booking.CancelledAt = &now
		if err := txRepo.Save(ctx, booking); err != nil {
			return err
		}
		_, err = s.seatsIn(tx).ReleaseSeatsForBooking(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.log.LogBookingCancelled(ctx, id.String())
	return nil
}

func (s *service) ExpirePendingBookingsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	return s.expirePending(ctx, func(txRepo Repository) ([]Booking, error) {
		return txRepo.FindPendingBefore(ctx, cutoff)
	})
}

func (s *service) ExpirePendingBookingsForEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	return s.expirePending(ctx, func(txRepo Repository) ([]Booking, error) {
		return txRepo.FindPendingByEvent(ctx, eventID)
	})
}

func (s *service) expirePending(ctx context.Context, find func(Repository) ([]Booking, error)) (int, error) {
	expired := 0
	err := s.repo.WithTx(ctx, func(txRepo Repository, tx *gorm.DB) error {
		stale, err := find(txRepo)
		if err != nil {
			return err
		}
		seatService := s.seatsIn(tx)
		for i := range stale {
			booking := &stale[i]
			booking.Status = StatusExpired
			if err := txRepo.Save(ctx, booking); err != nil {
				return err
			}
			if _, err := seatService.ReleaseSeatsForBooking(ctx, booking.ID); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

// seatsIn binds the seat service to the open booking transaction; outside a
// transaction the plain service is used.
func (s *service) seatsIn(tx *gorm.DB) seats.Service {
	if tx == nil {
		return s.seatService
	}
	return s.seatService.InTransaction(tx)
}

func (s *service) uniqueReference(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		ref, err := generateBookingRef()
		if err != nil {
			return "", err
		}
		taken, err := s.repo.ExistsByReference(ctx, ref)
		if err != nil {
			return "", err
		}
		if !taken {
			return ref, nil
		}
	}
	return "", apperrors.NewFatal("could not generate a unique booking reference after %d attempts", s.maxAttempts)
}
