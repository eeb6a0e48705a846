package refunds

import (
	"context"

	"github.com/google/uuid"

	"stagepass/internal/bookings"
	"stagepass/internal/payments"
	"stagepass/pkg/logger"
)

// EventDirectory lists cancelled events for the stuck-refund retry sweep; the
// events package provides an adapter.
type EventDirectory interface {
	ListCancelledEventIDs(ctx context.Context) ([]uuid.UUID, error)
}

type Service interface {
	// ProcessEventCancellation refunds every completed payment for the event
	// and expires its remaining pending bookings. Each refund runs
	// independently: one failure is logged and the fan-out continues.
	ProcessEventCancellation(ctx context.Context, eventID uuid.UUID) error

	// RetryStuckRefunds re-attempts refunds for completed payments that
	// survived an earlier cancellation fan-out. Returns how many succeeded.
	RetryStuckRefunds(ctx context.Context) (int, error)
}

type service struct {
	payments payments.Service
	bookings bookings.Service
	events   EventDirectory
	log      *logger.Logger
}

func NewService(paymentService payments.Service, bookingService bookings.Service, events EventDirectory) Service {
	return &service{
		payments: paymentService,
		bookings: bookingService,
		events:   events,
		log:      logger.GetDefault(),
	}
}

func (s *service) ProcessEventCancellation(ctx context.Context, eventID uuid.UUID) error {
	completed, err := s.payments.ListCompletedForEvent(ctx, eventID)
	if err != nil {
		return err
	}

	for i := range completed {
		payment := &completed[i]
		if _, err := s.payments.RefundPayment(ctx, payment.BookingID); err != nil {
			// leave the payment for the retry sweep
			s.log.LogRefundOutcome(ctx, payment.ID.String(), err)
		}
	}

	expired, err := s.bookings.ExpirePendingBookingsForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.log.Info("event cancellation processed",
		"event_id", eventID,
		"refund_candidates", len(completed),
		"bookings_expired", expired,
	)
	return nil
}

func (s *service) RetryStuckRefunds(ctx context.Context) (int, error) {
	cancelledEvents, err := s.events.ListCancelledEventIDs(ctx)
	if err != nil {
		return 0, err
	}

	recovered := 0
	for _, eventID := range cancelledEvents {
		stuck, err := s.payments.ListCompletedForEvent(ctx, eventID)
		if err != nil {
			s.log.WithError(err).Warn("failed to list stuck payments", "event_id", eventID)
			continue
		}
		for i := range stuck {
			payment := &stuck[i]
			if _, err := s.payments.RefundPayment(ctx, payment.BookingID); err != nil {
				s.log.LogRefundOutcome(ctx, payment.ID.String(), err)
				continue
			}
			recovered++
		}
	}
	return recovered, nil
}
