package refunds

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/bookings"
	"stagepass/internal/payments"
	"stagepass/internal/shared/apperrors"
)

// fakePaymentService scripts refund outcomes per booking.
type fakePaymentService struct {
	payments.Service
	completed map[uuid.UUID][]bookings.Payment // event -> payments
	failing   map[uuid.UUID]bool               // booking ids whose refund fails
	refunded  []uuid.UUID
}

func (f *fakePaymentService) ListCompletedForEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error) {
	var remaining []bookings.Payment
	for _, payment := range f.completed[eventID] {
		alreadyRefunded := false
		for _, id := range f.refunded {
			if id == payment.BookingID {
				alreadyRefunded = true
			}
		}
		if !alreadyRefunded {
			remaining = append(remaining, payment)
		}
	}
	return remaining, nil
}

func (f *fakePaymentService) RefundPayment(ctx context.Context, bookingID uuid.UUID) (*payments.PaymentResponse, error) {
	if f.failing[bookingID] {
		return nil, apperrors.NewFatal("gateway rejected refund")
	}
	f.refunded = append(f.refunded, bookingID)
	return &payments.PaymentResponse{BookingID: bookingID, Status: bookings.PaymentStatusRefunded}, nil
}

type fakeBookingService struct {
	bookings.Service
	expiredEvents []uuid.UUID
}

func (f *fakeBookingService) ExpirePendingBookingsForEvent(ctx context.Context, eventID uuid.UUID) (int, error) {
	f.expiredEvents = append(f.expiredEvents, eventID)
	return 2, nil
}

type fakeDirectory struct {
	cancelled []uuid.UUID
}

func (f *fakeDirectory) ListCancelledEventIDs(ctx context.Context) ([]uuid.UUID, error) {
	return f.cancelled, nil
}

func TestProcessEventCancellation(t *testing.T) {
	eventID := uuid.New()
	bookingIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var eventPayments []bookings.Payment
	for _, id := range bookingIDs {
		eventPayments = append(eventPayments, bookings.Payment{
			ID:        uuid.New(),
			BookingID: id,
			Status:    bookings.PaymentStatusCompleted,
		})
	}

	t.Run("refunds every completed payment and expires pending bookings", func(t *testing.T) {
		paymentSvc := &fakePaymentService{
			completed: map[uuid.UUID][]bookings.Payment{eventID: eventPayments},
			failing:   map[uuid.UUID]bool{},
		}
		bookingSvc := &fakeBookingService{}
		svc := NewService(paymentSvc, bookingSvc, &fakeDirectory{})

		require.NoError(t, svc.ProcessEventCancellation(context.Background(), eventID))
		assert.ElementsMatch(t, bookingIDs, paymentSvc.refunded)
		assert.Equal(t, []uuid.UUID{eventID}, bookingSvc.expiredEvents)
	})

	t.Run("one failed refund does not stop the fan-out", func(t *testing.T) {
		paymentSvc := &fakePaymentService{
			completed: map[uuid.UUID][]bookings.Payment{eventID: eventPayments},
			failing:   map[uuid.UUID]bool{bookingIDs[1]: true},
		}
		bookingSvc := &fakeBookingService{}
		svc := NewService(paymentSvc, bookingSvc, &fakeDirectory{})

		require.NoError(t, svc.ProcessEventCancellation(context.Background(), eventID))

		assert.ElementsMatch(t, []uuid.UUID{bookingIDs[0], bookingIDs[2]}, paymentSvc.refunded)
		// pending bookings are expired even when a refund fails
		assert.Equal(t, []uuid.UUID{eventID}, bookingSvc.expiredEvents)
	})
}

func TestRetryStuckRefunds(t *testing.T) {
	eventID := uuid.New()
	stuckBooking := uuid.New()

	paymentSvc := &fakePaymentService{
		completed: map[uuid.UUID][]bookings.Payment{
			eventID: {{ID: uuid.New(), BookingID: stuckBooking, Status: bookings.PaymentStatusCompleted}},
		},
		failing: map[uuid.UUID]bool{},
	}
	svc := NewService(paymentSvc, &fakeBookingService{}, &fakeDirectory{cancelled: []uuid.UUID{eventID}})

	recovered, err := svc.RetryStuckRefunds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, recovered)
	assert.Equal(t, []uuid.UUID{stuckBooking}, paymentSvc.refunded)

	// a second pass finds nothing left to do
	recovered, err = svc.RetryStuckRefunds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, recovered)
}
