// Package profiles implements profile editing, avatar asset lifecycle and
// account deletion for the authenticated user.
package profiles

import (
	"context"
	"errors"
	"strings"

	"github.com/finboard/finboard/apps/server/services/authn"
	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/fauth"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/finboard/finboard/pkg/fstore"
	"github.com/google/uuid"
)

// Users is the persistence surface the profile service needs. The bun-backed
// db.UserStore satisfies it.
type Users interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	users  Users
	assets fstore.Store
	logger *flog.Logger
}

func New(users Users, assets fstore.Store, logger *flog.Logger) *Service {
	return &Service{users: users, assets: assets, logger: logger}
}

// UpdateParams is a partial profile update. Nil pointers mean "leave as is";
// a pointer to an empty string clears the field where clearing is legal.
// AvatarKey, when set, is the storage key of an already-persisted upload.
type UpdateParams struct {
	Name      *string
	Email     *string
	Password  *string
	Phone     *string
	Instagram *string
	Leetcode  *string
	AvatarKey *string
}

// Update applies a partial update. On any failure after a new avatar was
// uploaded, the uploaded asset is removed so storage does not leak.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, p UpdateParams) (*models.User, error) {
	user, err := s.update(ctx, userID, p)
	if err != nil && p.AvatarKey != nil && *p.AvatarKey != "" {
		if derr := s.assets.Delete(ctx, *p.AvatarKey); derr != nil {
			s.logger.Warn("failed to remove orphaned avatar upload",
				"key", *p.AvatarKey, "error", derr)
		}
	}
	return user, err
}

func (s *Service) update(ctx context.Context, userID uuid.UUID, p UpdateParams) (*models.User, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		user.Name = strings.TrimSpace(*p.Name)
	}
	if p.Phone != nil {
		user.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Instagram != nil {
		user.Instagram = strings.TrimSpace(*p.Instagram)
	}
	if p.Leetcode != nil {
		user.Leetcode = strings.TrimSpace(*p.Leetcode)
	}

	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		if email != user.Email {
			if _, err := s.users.ByEmail(ctx, email); err == nil {
				return nil, authn.ErrEmailTaken
			} else if !errors.Is(err, db.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}

	if p.Password != nil {
		hash, err := fauth.HashPassword(*p.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	oldAvatar := user.Avatar
	if p.AvatarKey != nil {
		user.Avatar = *p.AvatarKey
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, authn.ErrEmailTaken
		}
		return nil, err
	}

	if p.AvatarKey != nil && oldAvatar != "" && oldAvatar != user.Avatar {
		s.removeAsset(ctx, oldAvatar)
	}

	return user, nil
}

func validate(p UpdateParams) error {
	var fields []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		fields = append(fields, "name cannot be empty")
	}
	if p.Email != nil && strings.TrimSpace(*p.Email) == "" {
		fields = append(fields, "email cannot be empty")
	}
	if p.Password != nil && len(*p.Password) < 6 {
		fields = append(fields, "password must be at least 6 characters")
	}
	if len(fields) > 0 {
		return &authn.ValidationError{Fields: fields}
	}
	return nil
}

// Delete removes the account. Transactions go with it via the foreign key;
// a locally stored avatar asset is removed best-effort.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	if user.Avatar != "" {
		s.removeAsset(ctx, user.Avatar)
	}

	s.logger.Info("account deleted", "user_id", userID.String())
	return nil
}

// removeAsset deletes a stored avatar unless it is a provider-hosted URL.
// Failures are logged, never propagated; the profile change already landed.
func (s *Service) removeAsset(ctx context.Context, avatar string) {
	if fstore.IsExternalURL(avatar) {
		return
	}
	if err := s.assets.Delete(ctx, avatar); err != nil {
		s.logger.Warn("failed to remove avatar asset", "key", avatar, "error", err)
	}
}
