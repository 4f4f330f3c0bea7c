// Package dash aggregates user statistics and listings for the dashboard.
package dash

import (
	"context"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	// newUserWindow bounds the "new users" stat.
	newUserWindow = 30 * 24 * time.Hour
)

// Users is the persistence surface the dashboard needs. The bun-backed
// db.UserStore satisfies it.
type Users interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Count(ctx context.Context) (int, error)
	CountByProvider(ctx context.Context, provider string) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	List(ctx context.Context, page, limit int) ([]models.User, int, error)
}

type Service struct {
	users Users
}

func New(users Users) *Service {
	return &Service{users: users}
}

// Stats is the aggregate user picture the dashboard landing page shows.
type Stats struct {
	TotalUsers  int
	LocalUsers  int
	GoogleUsers int
	GithubUsers int
	NewUsers30d int
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	local, err := s.users.CountByProvider(ctx, models.ProviderLocal)
	if err != nil {
		return nil, err
	}
	google, err := s.users.CountByProvider(ctx, models.ProviderGoogle)
	if err != nil {
		return nil, err
	}
	github, err := s.users.CountByProvider(ctx, models.ProviderGithub)
	if err != nil {
		return nil, err
	}
	recent, err := s.users.CountCreatedSince(ctx, time.Now().Add(-newUserWindow))
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:  total,
		LocalUsers:  local,
		GoogleUsers: google,
		GithubUsers: github,
		NewUsers30d: recent,
	}, nil
}

// UserPage is one page of the user listing plus its pagination envelope.
type UserPage struct {
	Users       []models.User
	Total       int
	TotalPages  int
	CurrentPage int
}

func (s *Service) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	return &UserPage{
		Users:       users,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// UserByID loads one user for the dashboard detail view.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.ByID(ctx, id)
}
