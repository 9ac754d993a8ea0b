package user

import (
	"context"
	"fmt"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

// DisplayName satisfies the name resolution the history recorder needs when
// denormalizing actor names onto audit rows.
func (s *Service) DisplayName(ctx context.Context, userID int64) (string, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Name, nil
}
