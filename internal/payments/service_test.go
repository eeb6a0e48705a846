package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stagepass/internal/bookings"
	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/clock"
)

type fakeRepository struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*bookings.Payment // keyed by booking id
	byEvent  map[uuid.UUID][]uuid.UUID       // event -> booking ids
	saveErr  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		payments: make(map[uuid.UUID]*bookings.Payment),
		byEvent:  make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeRepository) WithTx(ctx context.Context, fn func(txRepo Repository) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f *fakeRepository) Create(ctx context.Context, payment *bookings.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	copied := *payment
	f.payments[payment.BookingID] = &copied
	return nil
}

func (f *fakeRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error) {
	payment, ok := f.payments[bookingID]
	if !ok {
		return nil, apperrors.NewNotFound("payment")
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepository) GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error) {
	return f.GetByBookingID(ctx, bookingID)
}

func (f *fakeRepository) GetByTransactionReference(ctx context.Context, ref string) (*bookings.Payment, error) {
	for _, payment := range f.payments {
		if payment.TransactionReference == ref {
			copied := *payment
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("payment")
}

func (f *fakeRepository) FindCompletedByEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error) {
	var result []bookings.Payment
	for _, bookingID := range f.byEvent[eventID] {
		if payment, ok := f.payments[bookingID]; ok && payment.Status == bookings.PaymentStatusCompleted {
			result = append(result, *payment)
		}
	}
	return result, nil
}

func (f *fakeRepository) Save(ctx context.Context, payment *bookings.Payment) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	stored, ok := f.payments[payment.BookingID]
	if !ok {
		return apperrors.NewNotFound("payment")
	}
	stored.Status = payment.Status
	stored.PaidAt = payment.PaidAt
	return nil
}

// fakeBookingService tracks state transitions driven by the payment flow.
type fakeBookingService struct {
	bookings.Service
	statuses  map[uuid.UUID]bookings.Status
	amounts   map[uuid.UUID]float64
	confirmed []uuid.UUID
	cancelled []uuid.UUID
}

func newFakeBookingService() *fakeBookingService {
	return &fakeBookingService{
		statuses: make(map[uuid.UUID]bookings.Status),
		amounts:  make(map[uuid.UUID]float64),
	}
}

func (f *fakeBookingService) ConfirmBooking(ctx context.Context, id uuid.UUID) error {
	f.statuses[id] = bookings.StatusConfirmed
	f.confirmed = append(f.confirmed, id)
	return nil
}

func (f *fakeBookingService) CancelRefundedBooking(ctx context.Context, id uuid.UUID) error {
	f.statuses[id] = bookings.StatusCancelled
	f.cancelled = append(f.cancelled, id)
	return nil
}

// fakeBookingRepo serves the read side of InitializePayment.
type fakeBookingRepo struct {
	bookings.Repository
	records map[uuid.UUID]*bookings.Booking
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookings.Booking, error) {
	booking, ok := f.records[id]
	if !ok {
		return nil, apperrors.NewNotFound("booking")
	}
	return booking, nil
}

// scriptedGateway returns canned verdicts per transaction reference.
type scriptedGateway struct {
	verify  map[string]bool
	refund  map[string]bool
	failErr error
}

func (g *scriptedGateway) VerifyTransaction(ctx context.Context, ref string) (bool, error) {
	if g.failErr != nil {
		return false, g.failErr
	}
	return g.verify[ref], nil
}

func (g *scriptedGateway) RefundTransaction(ctx context.Context, ref string) (bool, error) {
	if g.failErr != nil {
		return false, g.failErr
	}
	ok, scripted := g.refund[ref]
	if !scripted {
		return true, nil
	}
	return ok, nil
}

type paymentFixture struct {
	repo        *fakeRepository
	bookingSvc  *fakeBookingService
	bookingRepo *fakeBookingRepo
	gateway     *scriptedGateway
	service     Service
	clock       *clock.Fixed
	bookingID   uuid.UUID
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	bookingID := uuid.New()
	fx := &paymentFixture{
		repo:       newFakeRepository(),
		bookingSvc: newFakeBookingService(),
		bookingRepo: &fakeBookingRepo{records: map[uuid.UUID]*bookings.Booking{
			bookingID: {ID: bookingID, Status: bookings.StatusPending, TotalAmount: 150.00},
		}},
		gateway:   &scriptedGateway{verify: make(map[string]bool), refund: make(map[string]bool)},
		clock:     &clock.Fixed{Current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		bookingID: bookingID,
	}
	fx.service = NewService(fx.repo, fx.bookingSvc, fx.bookingRepo, fx.gateway, fx.clock)
	return fx
}

func (fx *paymentFixture) initialize(t *testing.T) *PaymentResponse {
	t.Helper()
	resp, err := fx.service.InitializePayment(context.Background(), fx.bookingID, 150.00, "CARD")
	require.NoError(t, err)
	return resp
}

func TestInitializePayment(t *testing.T) {
	t.Run("creates a pending payment", func(t *testing.T) {
		fx := newPaymentFixture(t)

		resp := fx.initialize(t)
		assert.Equal(t, bookings.PaymentStatusPending, resp.Status)
		assert.Equal(t, 150.00, resp.Amount)
		assert.NotEmpty(t, resp.TransactionReference)
	})

	t.Run("rejects a mismatched amount", func(t *testing.T) {
		fx := newPaymentFixture(t)

		_, err := fx.service.InitializePayment(context.Background(), fx.bookingID, 99.00, "CARD")
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("rejects a second payment for the same booking", func(t *testing.T) {
		fx := newPaymentFixture(t)
		fx.initialize(t)

		_, err := fx.service.InitializePayment(context.Background(), fx.bookingID, 150.00, "CARD")
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects a non-pending booking", func(t *testing.T) {
		fx := newPaymentFixture(t)
		fx.bookingRepo.records[fx.bookingID].Status = bookings.StatusCancelled

		_, err := fx.service.InitializePayment(context.Background(), fx.bookingID, 150.00, "CARD")
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("positive verdict completes payment and confirms booking", func(t *testing.T) {
		fx := newPaymentFixture(t)
		resp := fx.initialize(t)
		fx.gateway.verify[resp.TransactionReference] = true

		verified, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)

		assert.Equal(t, bookings.PaymentStatusCompleted, verified.Status)
		assert.Equal(t, fx.clock.Current, *verified.PaidAt)
		assert.Contains(t, fx.bookingSvc.confirmed, fx.bookingID)
	})

	t.Run("verifying a completed payment again is a no-op", func(t *testing.T) {
		fx := newPaymentFixture(t)
		resp := fx.initialize(t)
		fx.gateway.verify[resp.TransactionReference] = true

		_, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)
		again, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)

		assert.Equal(t, bookings.PaymentStatusCompleted, again.Status)
		// the booking is not re-confirmed
		assert.Len(t, fx.bookingSvc.confirmed, 1)
	})

	t.Run("negative verdict fails the payment but keeps the booking pending", func(t *testing.T) {
		fx := newPaymentFixture(t)
		resp := fx.initialize(t)
		fx.gateway.verify[resp.TransactionReference] = false

		_, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		require.True(t, apperrors.IsConflict(err))

		stored := fx.repo.payments[fx.bookingID]
		assert.Equal(t, bookings.PaymentStatusFailed, stored.Status)
		assert.Empty(t, fx.bookingSvc.confirmed)
		assert.Empty(t, fx.bookingSvc.cancelled)
	})

	t.Run("rejects verifying a refunded payment", func(t *testing.T) {
		fx := newPaymentFixture(t)
		fx.initialize(t)
		fx.repo.payments[fx.bookingID].Status = bookings.PaymentStatusRefunded

		_, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestRefundPayment(t *testing.T) {
	completedFixture := func(t *testing.T) *paymentFixture {
		fx := newPaymentFixture(t)
		resp := fx.initialize(t)
		fx.gateway.verify[resp.TransactionReference] = true
		_, err := fx.service.VerifyPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)
		return fx
	}

	t.Run("refunds a completed payment and cancels the booking", func(t *testing.T) {
		fx := completedFixture(t)

		resp, err := fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)

		assert.Equal(t, bookings.PaymentStatusRefunded, resp.Status)
		assert.Contains(t, fx.bookingSvc.cancelled, fx.bookingID)
	})

	t.Run("rejects refunding twice", func(t *testing.T) {
		fx := completedFixture(t)
		_, err := fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.NoError(t, err)

		_, err = fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "already been refunded")
	})

	t.Run("rejects refunding a payment that never completed", func(t *testing.T) {
		fx := newPaymentFixture(t)
		fx.initialize(t)

		_, err := fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "only completed payments")
	})

	t.Run("persistence failure after a successful gateway refund is fatal", func(t *testing.T) {
		fx := completedFixture(t)
		fx.repo.saveErr = errors.New("connection reset by peer")

		_, err := fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.True(t, apperrors.IsFatal(err))
		assert.Contains(t, err.Error(), "was not recorded")

		assert.Equal(t, bookings.PaymentStatusCompleted, fx.repo.payments[fx.bookingID].Status)
		assert.Empty(t, fx.bookingSvc.cancelled)
	})

	t.Run("gateway refusal is fatal and leaves the payment completed", func(t *testing.T) {
		fx := completedFixture(t)
		fx.gateway.refund[fx.repo.payments[fx.bookingID].TransactionReference] = false

		_, err := fx.service.RefundPayment(context.Background(), fx.bookingID)
		require.True(t, apperrors.IsFatal(err))

		assert.Equal(t, bookings.PaymentStatusCompleted, fx.repo.payments[fx.bookingID].Status)
		assert.Empty(t, fx.bookingSvc.cancelled)
	})
}
