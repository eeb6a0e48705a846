package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"stagepass/internal/shared/apperrors"
)

// Service interface defines the contract for user business logic
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("user with email %s already exists", req.Email)
	}

	user := &User{
		Name:  req.Name,
		Email: req.Email,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
