package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stagepass/internal/shared/apperrors"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	GetAll(ctx context.Context) ([]Event, error)
	FindByStatus(ctx context.Context, status Status) ([]Event, error)
	Update(ctx context.Context, event *Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error

	// HasBookings reports whether any booking references the event.
	HasBookings(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("event")
		}
		return nil, err
	}
	return &event, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Event, error) {
	var result []Event
	err := r.db.WithContext(ctx).Order("start_date_time ASC").Find(&result).Error
	return result, err
}

func (r *repository) FindByStatus(ctx context.Context, status Status) ([]Event, error) {
	var result []Event
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("start_date_time ASC").
		Find(&result).Error
	return result, err
}

func (r *repository) Update(ctx context.Context, event *Event) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]interface{}{
			"name":         event.Name,
			"description":  event.Description,
			"ticket_price": event.TicketPrice,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Event{}).Error
}

func (r *repository) HasBookings(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("bookings").
		Where("event_id = ?", id).
		Count(&count).Error
	return count > 0, err
}
