package venues

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stagepass/internal/shared/apperrors"
)

type Repository interface {
	Create(ctx context.Context, venue *Venue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	GetAll(ctx context.Context) ([]Venue, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, venue *Venue) error {
	return r.db.WithContext(ctx).Create(venue).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).First(&venue, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("venue")
		}
		return nil, err
	}
	return &venue, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Venue, error) {
	var result []Venue
	err := r.db.WithContext(ctx).Order("name ASC").Find(&result).Error
	return result, err
}
