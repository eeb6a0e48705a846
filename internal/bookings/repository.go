package bookings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stagepass/internal/shared/apperrors"
)

type Repository interface {
	// WithTx runs fn in one transaction. The raw handle is passed through so
	// the seat service can join the same transaction via InTransaction.
	WithTx(ctx context.Context, fn func(txRepo Repository, tx *gorm.DB) error) error

	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*Booking, error)
	GetByReference(ctx context.Context, ref string) (*Booking, error)
	GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error)
	ExistsByReference(ctx context.Context, ref string) (bool, error)

	// FindPendingBefore locks and returns PENDING bookings created before cutoff.
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]Booking, error)
	// FindPendingByEvent locks and returns all PENDING bookings for an event.
	FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]Booking, error)

	// GetPaymentByBookingID returns nil without error when no payment exists.
	GetPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)

	Save(ctx context.Context, booking *Booking) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(txRepo Repository, tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx}, tx)
	})
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByReference(ctx context.Context, ref string) (*Booking, error) {
	var booking Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Preload("Payment").
		Where("booking_ref = ?", ref).
		First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("booking")
		}
		return nil, err
	}
	return &booking, nil
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var result []Booking
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error
	return result, total, err
}

func (r *repository) ExistsByReference(ctx context.Context, ref string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("booking_ref = ?", ref).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND created_at < ?", StatusPending, cutoff).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) FindPendingByEvent(ctx context.Context, eventID uuid.UUID) ([]Booking, error) {
	var result []Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND event_id = ?", StatusPending, eventID).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) GetPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) Save(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":       booking.Status,
			"cancelled_at": booking.CancelledAt,
			"updated_at":   time.Now().UTC(),
		}).Error
}
