package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stagepass/internal/bookings"
	"stagepass/internal/shared/apperrors"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(txRepo Repository) error) error

	Create(ctx context.Context, payment *bookings.Payment) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error)
	GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error)
	GetByTransactionReference(ctx context.Context, ref string) (*bookings.Payment, error)

	// FindCompletedByEvent returns COMPLETED payments whose booking belongs
	// to the event. Used by the refund fan-out after an event cancellation.
	FindCompletedByEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error)

	Save(ctx context.Context, payment *bookings.Payment) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(ctx context.Context, fn func(txRepo Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) Create(ctx context.Context, payment *bookings.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error) {
	var payment bookings.Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*bookings.Payment, error) {
	var payment bookings.Payment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) GetByTransactionReference(ctx context.Context, ref string) (*bookings.Payment, error) {
	var payment bookings.Payment
	err := r.db.WithContext(ctx).Where("transaction_reference = ?", ref).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("payment")
		}
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindCompletedByEvent(ctx context.Context, eventID uuid.UUID) ([]bookings.Payment, error) {
	var result []bookings.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Where("bookings.event_id = ? AND payments.status = ?", eventID, bookings.PaymentStatusCompleted).
		Order("payments.id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) Save(ctx context.Context, payment *bookings.Payment) error {
	return r.db.WithContext(ctx).
		Model(&bookings.Payment{}).
		Where("id = ?", payment.ID).
		Updates(map[string]interface{}{
			"status":     payment.Status,
			"paid_at":    payment.PaidAt,
			"updated_at": time.Now().UTC(),
		}).Error
}
