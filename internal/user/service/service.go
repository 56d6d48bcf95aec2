package service

import (
	"context"
	"fmt"
	"time"
)

type UserRepository interface {
	Create(ctx context.Context, chatID int64) error
	SetClaimed(ctx context.Context, chatID int64) error
	IsClaimed(ctx context.Context, chatID int64) (bool, error)
	CountNewSince(ctx context.Context, t time.Time) (int64, error)
	CountNewBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// Register создаёт пользователя при первом контакте, повтор — no-op.
func (s *UserService) Register(ctx context.Context, chatID int64) error {
	if err := s.repo.Create(ctx, chatID); err != nil {
		return fmt.Errorf("register user %d: %w", chatID, err)
	}
	return nil
}

// Claim marks the reward as granted. The flag only ever goes false -> true.
func (s *UserService) Claim(ctx context.Context, chatID int64) error {
	if err := s.repo.SetClaimed(ctx, chatID); err != nil {
		return fmt.Errorf("claim for user %d: %w", chatID, err)
	}
	return nil
}

func (s *UserService) IsClaimed(ctx context.Context, chatID int64) (bool, error) {
	return s.repo.IsClaimed(ctx, chatID)
}

func (s *UserService) CountNewSince(ctx context.Context, t time.Time) (int64, error) {
	return s.repo.CountNewSince(ctx, t)
}

func (s *UserService) CountNewBetween(ctx context.Context, from, to time.Time) (int64, error) {
	return s.repo.CountNewBetween(ctx, from, to)
}
