package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStore is the bun-backed persistence layer for user records. Services
// consume it through their own narrow interfaces.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().
		Model(&user).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ByEmail looks a user up by their stored (lowercased) email.
func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().
		Model(&user).
		Where("u.email = ?", email).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ByProviderID looks a user up by a provider identity slot.
func (s *UserStore) ByProviderID(ctx context.Context, provider, providerID string) (*models.User, error) {
	var user models.User
	q := s.db.NewSelect().Model(&user)
	switch provider {
	case models.ProviderGoogle:
		q = q.Where("u.google_id = ?", providerID)
	case models.ProviderGithub:
		q = q.Where("u.github_id = ?", providerID)
	default:
		return nil, ErrNotFound
	}

	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Insert persists a new user. Unique-index violations (email or provider
// identity already claimed) surface as ErrConflict so callers can treat the
// find-or-create race as retryable.
func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().Model(user).Returning("*").Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	res, err := s.db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a page of users, newest first, plus the total count.
func (s *UserStore) List(ctx context.Context, page, limit int) ([]models.User, int, error) {
	var users []models.User
	total, err := s.db.NewSelect().
		Model(&users).
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*models.User)(nil)).Count(ctx)
}

func (s *UserStore) CountByProvider(ctx context.Context, provider string) (int, error) {
	return s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("auth_provider = ?", provider).
		Count(ctx)
}

func (s *UserStore) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	return s.db.NewSelect().
		Model((*models.User)(nil)).
		Where("created_at >= ?", since).
		Count(ctx)
}
