package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stagepass/internal/seats"
	"stagepass/internal/shared/apperrors"
	"stagepass/pkg/clock"
)

type fakeRepository struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*Booking
	payments map[uuid.UUID]*Payment // keyed by booking id
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bookings: make(map[uuid.UUID]*Booking),
		payments: make(map[uuid.UUID]*Payment),
	}
}

// WithTx serializes callers and rolls the stored bookings back when fn fails,
// mirroring transaction semantics.
func (f *fakeRepository) WithTx(ctx context.Context, fn func(txRepo Repository, tx *gorm.DB) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make(map[uuid.UUID]Booking, len(f.bookings))
	for id, booking := range f.bookings {
		snapshot[id] = *booking
	}
	if err := fn(f, nil); err != nil {
		f.bookings = make(map[uuid.UUID]*Booking, len(snapshot))
		for id := range snapshot {
			copied := snapshot[id]
			f.bookings[id] = &copied
		}
		return err
	}
	return nil
}

func (f *fakeRepository) Create(ctx context.Context, booking *Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now().UTC()
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFound("booking")
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) GetByReference(ctx context.Context, ref string) (*Booking, error) {
	for _, booking := range f.bookings {
		if booking.BookingRef == ref {
			copied := *booking
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("booking")
}

func (f *fakeRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var result []Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			result = append(result, *booking)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeRepository) ExistsByReference(ctx context.Context, ref string) (bool, error) {
	_, err := f.GetByReference(ctx, ref)
	return err == nil, nil
}

func (f *fakeRepository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]Booking, error) {
	var result []Booking
	for _, booking := range f.bookings {
		if booking.Status == StatusPending && booking.CreatedAt.Before(cutoff) {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeRepository) FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	var result []Booking
	for _, booking := range f.bookings {
		if booking.Status == StatusPending && booking.EventID == eventID {
			result = append(result, *booking)
		}
	}
	return result, nil
}

func (f *fakeRepository) GetPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	payment, ok := f.payments[bookingID]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (f *fakeRepository) Save(ctx context.Context, booking *Booking) error {
	stored, ok := f.bookings[booking.ID]
	if !ok {
		return apperrors.NewNotFound("booking")
	}
	stored.Status = booking.Status
	stored.CancelledAt = booking.CancelledAt
	return nil
}

// fakeSeatService records the transitions the booking flow drives.
type fakeSeatService struct {
	heldBy        map[uuid.UUID]uuid.UUID // seat -> user
	seatEvent     map[uuid.UUID]uuid.UUID // seat -> event
	linked        map[uuid.UUID]uuid.UUID // seat -> booking
	bookedFor     []uuid.UUID
	releasedFor   []uuid.UUID
	validateError error
	markBookedErr error
	releaseErr    error
}

func newFakeSeatService() *fakeSeatService {
	return &fakeSeatService{
		heldBy:    make(map[uuid.UUID]uuid.UUID),
		seatEvent: make(map[uuid.UUID]uuid.UUID),
		linked:    make(map[uuid.UUID]uuid.UUID),
	}
}

func (f *fakeSeatService) CreateSeatsForEvent(ctx context.Context, eventID uuid.UUID, numberOfSeats int) error {
	return nil
}

func (f *fakeSeatService) GetSeatsByEvent(ctx context.Context, eventID uuid.UUID, onlyAvailable bool) ([]seats.SeatResponse, error) {
	return nil, nil
}

func (f *fakeSeatService) CountAvailable(ctx context.Context, eventID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeSeatService) HoldSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) ([]seats.SeatResponse, error) {
	return nil, nil
}

func (f *fakeSeatService) ReleaseSeats(ctx context.Context, eventID, userID uuid.UUID, seatIDs []uuid.UUID) error {
	return nil
}

func (f *fakeSeatService) ReleaseExpiredHolds(ctx context.Context, cutoff time.Time) (int, error) {
	return 0, nil
}

func (f *fakeSeatService) ValidateAndConsumeForBooking(ctx context.Context, seatIDs []uuid.UUID, userID, eventID uuid.UUID) ([]seats.Seat, error) {
	if f.validateError != nil {
		return nil, f.validateError
	}
	result := make([]seats.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		holder, held := f.heldBy[id]
		if !held || holder != userID {
			return nil, apperrors.NewConflict("seat is not currently held by you")
		}
		result = append(result, seats.Seat{ID: id, EventID: eventID, Status: seats.StatusHeld})
	}
	return result, nil
}

func (f *fakeSeatService) LinkSeatsToBooking(ctx context.Context, seatIDs []uuid.UUID, userID, bookingID uuid.UUID) error {
	for _, id := range seatIDs {
		if holder, held := f.heldBy[id]; !held || holder != userID {
			return apperrors.NewConflict("seat is no longer held by you")
		}
		f.linked[id] = bookingID
	}
	return nil
}

func (f *fakeSeatService) MarkSeatsBooked(ctx context.Context, bookingID uuid.UUID) error {
	if f.markBookedErr != nil {
		return f.markBookedErr
	}
	f.bookedFor = append(f.bookedFor, bookingID)
	return nil
}

func (f *fakeSeatService) ReleaseSeatsForBooking(ctx context.Context, bookingID uuid.UUID) (int, error) {
	if f.releaseErr != nil {
		return 0, f.releaseErr
	}
	f.releasedFor = append(f.releasedFor, bookingID)
	count := 0
	for id, linked := range f.linked {
		if linked == bookingID {
			delete(f.linked, id)
			delete(f.heldBy, id)
			count++
		}
	}
	return count, nil
}

func (f *fakeSeatService) InTransaction(tx *gorm.DB) seats.Service {
	return f
}

type fakeEventLookup struct {
	events map[uuid.UUID]*EventSummary
}

func (f *fakeEventLookup) LookupEvent(ctx context.Context, eventID uuid.UUID) (*EventSummary, error) {
	event, ok := f.events[eventID]
	if !ok {
		return nil, apperrors.NewNotFound("event")
	}
	return event, nil
}

type fakeUserLookup struct {
	users map[uuid.UUID]bool
}

func (f *fakeUserLookup) UserExists(ctx context.Context, userID uuid.UUID) error {
	if !f.users[userID] {
		return apperrors.NewNotFound("user")
	}
	return nil
}

type bookingFixture struct {
	repo    *fakeRepository
	seats   *fakeSeatService
	service Service
	clock   *clock.Fixed
	eventID uuid.UUID
	userID  uuid.UUID
	seatIDs []uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	repo := newFakeRepository()
	seatService := newFakeSeatService()
	eventID := uuid.New()
	userID := uuid.New()

	seatIDs := []uuid.UUID{uuid.New(), uuid.New()}
	for _, id := range seatIDs {
		seatService.heldBy[id] = userID
		seatService.seatEvent[id] = eventID
	}

	clk := &clock.Fixed{Current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	events := &fakeEventLookup{events: map[uuid.UUID]*EventSummary{
		eventID: {ID: eventID, Name: "Test Concert", Sellable: true},
	}}
	users := &fakeUserLookup{users: map[uuid.UUID]bool{userID: true}}

	return &bookingFixture{
		repo:    repo,
		seats:   seatService,
		service: NewService(repo, seatService, events, users, clk, 4),
		clock:   clk,
		eventID: eventID,
		userID:  userID,
		seatIDs: seatIDs,
	}
}

func (fx *bookingFixture) createBooking(t *testing.T) uuid.UUID {
	t.Helper()
	resp, err := fx.service.CreatePendingBooking(context.Background(), fx.userID, fx.eventID, fx.seatIDs, 150.00)
	require.NoError(t, err)
	return resp.ID
}

func TestCreatePendingBooking(t *testing.T) {
	t.Run("creates a pending booking from held seats", func(t *testing.T) {
		fx := newBookingFixture(t)

		resp, err := fx.service.CreatePendingBooking(context.Background(), fx.userID, fx.eventID, fx.seatIDs, 150.00)
		require.NoError(t, err)

		assert.Equal(t, StatusPending, resp.Status)
		assert.Equal(t, 150.00, resp.TotalAmount)
		assert.Regexp(t, `^ST-[A-HJ-NP-Z2-9]{6}$`, resp.BookingRef)
		for _, id := range fx.seatIDs {
			assert.Equal(t, resp.ID, fx.seats.linked[id])
		}
	})

	t.Run("rejects seats the user does not hold", func(t *testing.T) {
		fx := newBookingFixture(t)

		_, err := fx.service.CreatePendingBooking(context.Background(), fx.userID, fx.eventID, []uuid.UUID{uuid.New()}, 75.00)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects a cancelled event", func(t *testing.T) {
		fx := newBookingFixture(t)
		closedEvent := uuid.New()
		events := &fakeEventLookup{events: map[uuid.UUID]*EventSummary{
			closedEvent: {ID: closedEvent, Name: "Cancelled Show", Sellable: false},
		}}
		users := &fakeUserLookup{users: map[uuid.UUID]bool{fx.userID: true}}
		svc := NewService(fx.repo, fx.seats, events, users, fx.clock, 4)

		_, err := svc.CreatePendingBooking(context.Background(), fx.userID, closedEvent, fx.seatIDs, 150.00)
		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		fx := newBookingFixture(t)

		_, err := fx.service.CreatePendingBooking(context.Background(), uuid.New(), fx.eventID, fx.seatIDs, 150.00)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestConfirmBooking(t *testing.T) {
	t.Run("confirms a pending booking with a completed payment", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.payments[bookingID] = &Payment{
			ID:        uuid.New(),
			BookingID: bookingID,
			Status:    PaymentStatusCompleted,
		}

		require.NoError(t, fx.service.ConfirmBooking(context.Background(), bookingID))
		assert.Equal(t, StatusConfirmed, fx.repo.bookings[bookingID].Status)
		assert.Contains(t, fx.seats.bookedFor, bookingID)
	})

	t.Run("confirming twice is a no-op", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.payments[bookingID] = &Payment{Status: PaymentStatusCompleted, BookingID: bookingID}

		require.NoError(t, fx.service.ConfirmBooking(context.Background(), bookingID))
		require.NoError(t, fx.service.ConfirmBooking(context.Background(), bookingID))

		// seats were only marked booked once
		assert.Len(t, fx.seats.bookedFor, 1)
	})

	t.Run("rejects confirming without a completed payment", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)

		err := fx.service.ConfirmBooking(context.Background(), bookingID)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, StatusPending, fx.repo.bookings[bookingID].Status)
	})

	t.Run("rolls back the confirmation when the seat transition fails", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.payments[bookingID] = &Payment{Status: PaymentStatusCompleted, BookingID: bookingID}
		fx.seats.markBookedErr = apperrors.NewConflict("seat 1 was modified concurrently")

		err := fx.service.ConfirmBooking(context.Background(), bookingID)
		require.Error(t, err)

		assert.Equal(t, StatusPending, fx.repo.bookings[bookingID].Status)
		assert.Empty(t, fx.seats.bookedFor)
	})

	t.Run("rejects confirming an expired booking", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.bookings[bookingID].Status = StatusExpired
		fx.repo.payments[bookingID] = &Payment{Status: PaymentStatusCompleted, BookingID: bookingID}

		err := fx.service.ConfirmBooking(context.Background(), bookingID)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestCancelBooking(t *testing.T) {
	t.Run("cancels a pending booking and frees its seats", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)

		require.NoError(t, fx.service.CancelBooking(context.Background(), bookingID))

		booking := fx.repo.bookings[bookingID]
		assert.Equal(t, StatusCancelled, booking.Status)
		assert.NotNil(t, booking.CancelledAt)
		assert.Contains(t, fx.seats.releasedFor, bookingID)
	})

	t.Run("rejects cancelling a confirmed booking", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.bookings[bookingID].Status = StatusConfirmed

		err := fx.service.CancelBooking(context.Background(), bookingID)
		require.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "refund")
		assert.Equal(t, StatusConfirmed, fx.repo.bookings[bookingID].Status)
	})

	t.Run("rolls back the cancellation when seat release fails", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.seats.releaseErr = apperrors.NewConflict("seat 1 was modified concurrently")

		err := fx.service.CancelBooking(context.Background(), bookingID)
		require.Error(t, err)
		assert.Equal(t, StatusPending, fx.repo.bookings[bookingID].Status)
	})

	t.Run("rejects cancelling an expired booking", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.bookings[bookingID].Status = StatusExpired

		err := fx.service.CancelBooking(context.Background(), bookingID)
		assert.True(t, apperrors.IsConflict(err))
	})
}

func TestCancelRefundedBooking(t *testing.T) {
	fx := newBookingFixture(t)
	bookingID := fx.createBooking(t)
	fx.repo.bookings[bookingID].Status = StatusConfirmed

	require.NoError(t, fx.service.CancelRefundedBooking(context.Background(), bookingID))

	booking := fx.repo.bookings[bookingID]
	assert.Equal(t, StatusCancelled, booking.Status)
	assert.NotNil(t, booking.CancelledAt)
	assert.Contains(t, fx.seats.releasedFor, bookingID)
}

func TestExpirePendingBookings(t *testing.T) {
	t.Run("expires only bookings older than the cutoff", func(t *testing.T) {
		fx := newBookingFixture(t)
		staleID := fx.createBooking(t)
		fx.repo.bookings[staleID].CreatedAt = fx.clock.Now().Add(-16 * time.Minute)

		freshSeats := []uuid.UUID{uuid.New()}
		fx.seats.heldBy[freshSeats[0]] = fx.userID
		freshResp, err := fx.service.CreatePendingBooking(context.Background(), fx.userID, fx.eventID, freshSeats, 75.00)
		require.NoError(t, err)
		fx.repo.bookings[freshResp.ID].CreatedAt = fx.clock.Now().Add(-10 * time.Minute)

		expired, err := fx.service.ExpirePendingBookingsBefore(context.Background(), fx.clock.Now().Add(-15*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 1, expired)

		assert.Equal(t, StatusExpired, fx.repo.bookings[staleID].Status)
		assert.Equal(t, StatusPending, fx.repo.bookings[freshResp.ID].Status)
		assert.Contains(t, fx.seats.releasedFor, staleID)
		assert.NotContains(t, fx.seats.releasedFor, freshResp.ID)
	})

	t.Run("expires all pending bookings for an event", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)

		expired, err := fx.service.ExpirePendingBookingsForEvent(context.Background(), fx.eventID)
		require.NoError(t, err)
		assert.Equal(t, 1, expired)
		assert.Equal(t, StatusExpired, fx.repo.bookings[bookingID].Status)
	})

	t.Run("leaves confirmed bookings alone", func(t *testing.T) {
		fx := newBookingFixture(t)
		bookingID := fx.createBooking(t)
		fx.repo.bookings[bookingID].Status = StatusConfirmed

		expired, err := fx.service.ExpirePendingBookingsForEvent(context.Background(), fx.eventID)
		require.NoError(t, err)
		assert.Equal(t, 0, expired)
		assert.Equal(t, StatusConfirmed, fx.repo.bookings[bookingID].Status)
	})
}
