package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stagepass/internal/shared/apperrors"
)

type Repository interface {
	// WithTx runs fn against a repository bound to a single database
	// transaction. Row locks taken inside fn are held until fn returns.
	WithTx(ctx context.Context, fn func(txRepo Repository) error) error

	CreateSeats(ctx context.Context, seatsToCreate []Seat) error
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error)

	// GetByIDsForUpdate locks exactly the rows identified by ids, ordered by
	// id so overlapping hold attempts always acquire locks in the same order.
	GetByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Seat, error)

	GetByEventID(ctx context.Context, eventID uuid.UUID) ([]Seat, error)
	GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) ([]Seat, error)
	CountByEventIDAndStatus(ctx context.Context, eventID uuid.UUID, status Status) (int64, error)

	// FindExpiredHolds locks and returns all seats HELD since before cutoff.
	FindExpiredHolds(ctx context.Context, cutoff time.Time) ([]Seat, error)

	// SaveAll persists hold/booking transitions with a version
	// compare-and-increment per row; a row changed underneath fails the save.
	SaveAll(ctx context.Context, seatsToSave []*Seat) error
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

func (r *repository) CreateSeats(ctx context.Context, seatsToCreate []Seat) error {
	return r.db.WithContext(ctx).Create(&seatsToCreate).Error
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) GetByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) GetByEventID(ctx context.Context, eventID uuid.UUID) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("seat_number ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) GetByBookingIDForUpdate(ctx context.Context, bookingID uuid.UUID) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) CountByEventIDAndStatus(ctx context.Context, eventID uuid.UUID, status Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	return count, err
}

func (r *repository) FindExpiredHolds(ctx context.Context, cutoff time.Time) ([]Seat, error) {
	var result []Seat
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ? AND held_at < ?", StatusHeld, cutoff).
		Order("id ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) SaveAll(ctx context.Context, seatsToSave []*Seat) error {
	now := time.Now().UTC()
	for _, seat := range seatsToSave {
		res := r.db.WithContext(ctx).
			Model(&Seat{}).
			Where("id = ? AND version = ?", seat.ID, seat.Version).
			Updates(map[string]interface{}{
				"status":          seat.Status,
				"held_at":         seat.HeldAt,
				"held_by_user_id": seat.HeldByUserID,
				"booking_id":      seat.BookingID,
				"version":         seat.Version + 1,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewConflict("seat %s was modified concurrently", seat.ID)
		}
		seat.Version++
	}
	return nil
}
