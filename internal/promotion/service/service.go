package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"promohub/internal/promotion"
)

var (
	ErrNotFound     = errors.New("promotion not found")
	ErrInvalidField = errors.New("invalid promotion field")
	ErrEmptyTitle   = errors.New("title must not be empty")
)

// TopLimit — ограничение выдачи /api/top-promotions.
const TopLimit = 10

type PromotionRepository interface {
	Add(ctx context.Context, p *promotion.Promotion) error
	UpdateField(ctx context.Context, id int64, field promotion.Field, value string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*promotion.Promotion, error)
	Get(ctx context.Context, id int64) (*promotion.Promotion, error)
	LogClick(ctx context.Context, promotionID int64, action string, userID *int64) error
	TopByRedirects(ctx context.Context, limit int) ([]promotion.PromoCount, error)
	RedirectCounts(ctx context.Context) ([]promotion.TitleCount, error)
}

type UserCounter interface {
	CountNewSince(ctx context.Context, t time.Time) (int64, error)
}

type Service struct {
	Repo  PromotionRepository
	Users UserCounter
}

func NewService(repo PromotionRepository, users UserCounter) *Service {
	return &Service{Repo: repo, Users: users}
}

type CreateInput struct {
	Title       string
	Description string
	Link        string
	PreviewRef  *string
	DetailRef   *string
}

func (s *Service) Add(ctx context.Context, in CreateInput) (int64, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, ErrEmptyTitle
	}

	p := &promotion.Promotion{
		Title:              title,
		Description:        strings.TrimSpace(in.Description),
		Link:               strings.TrimSpace(in.Link),
		PreviewImageFileID: in.PreviewRef,
		ImageFileID:        in.DetailRef,
	}

	if err := s.Repo.Add(ctx, p); err != nil {
		return 0, fmt.Errorf("add promotion: %w", err)
	}
	return p.ID, nil
}

// UpdateField rejects field names outside the allow-list before any value
// reaches the repository.
func (s *Service) UpdateField(ctx context.Context, id int64, field promotion.Field, value string) error {
	if _, ok := promotion.ParseField(string(field)); !ok {
		return ErrInvalidField
	}

	err := s.Repo.UpdateField(ctx, id, field, value)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update promotion %d: %w", id, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.Repo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete promotion %d: %w", id, err)
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]*promotion.Promotion, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*promotion.Promotion, error) {
	p, err := s.Repo.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get promotion %d: %w", id, err)
	}
	return p, nil
}

// LogClick is fire-and-forget: an unknown promotion id is not an error.
func (s *Service) LogClick(ctx context.Context, promotionID int64, action string, userID *int64) error {
	if action == "" {
		action = "redirect"
	}
	if err := s.Repo.LogClick(ctx, promotionID, action, userID); err != nil {
		return fmt.Errorf("log click: %w", err)
	}
	return nil
}

func (s *Service) Top(ctx context.Context) ([]promotion.PromoCount, error) {
	return s.Repo.TopByRedirects(ctx, TopLimit)
}

// DailyStats считает "сегодня" от полуночи UTC.
func (s *Service) DailyStats(ctx context.Context) (promotion.DailyStats, error) {
	midnight := time.Now().UTC().Truncate(24 * time.Hour)

	newUsers, err := s.Users.CountNewSince(ctx, midnight)
	if err != nil {
		return promotion.DailyStats{}, fmt.Errorf("count new users: %w", err)
	}

	redirects, err := s.Repo.RedirectCounts(ctx)
	if err != nil {
		return promotion.DailyStats{}, fmt.Errorf("redirect counts: %w", err)
	}

	return promotion.DailyStats{NewUsers: newUsers, Redirects: redirects}, nil
}
