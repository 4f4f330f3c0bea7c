package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
)

// ResolveIdentity maps an external profile to exactly one local account,
// creating it if needed. Resolution order:
//
//  1. An account already holding this provider identity wins.
//  2. Otherwise an account with the same email gets the identity linked.
//  3. Otherwise a fresh account is created with the provider as its origin.
//
// If the provider identity and the email point at two different accounts,
// nothing is merged and the caller gets ErrIdentityConflict. AuthProvider
// records the account's creation origin and is never rewritten by a later
// social login.
func (s *Service) ResolveIdentity(ctx context.Context, profile *ExternalProfile) (*models.User, error) {
	user, err := s.resolveIdentity(ctx, profile)
	if errors.Is(err, db.ErrConflict) {
		// Lost a race with a concurrent callback for the same person. The
		// winning row exists now, so a second resolution pass finds it.
		user, err = s.resolveIdentity(ctx, profile)
	}
	return user, err
}

func (s *Service) resolveIdentity(ctx context.Context, profile *ExternalProfile) (*models.User, error) {
	byProvider, err := s.users.ByProviderID(ctx, profile.Provider, profile.ID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	byEmail, err := s.users.ByEmail(ctx, profile.Email)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if byProvider != nil && byEmail != nil && byProvider.ID != byEmail.ID {
		s.logger.Warn("identity conflict",
			"provider", profile.Provider,
			"provider_user", byProvider.ID.String(),
			"email_user", byEmail.ID.String())
		return nil, ErrIdentityConflict
	}

	if byProvider != nil {
		return s.refreshExternalUser(ctx, byProvider, profile)
	}

	if byEmail != nil {
		if existing := byEmail.ProviderID(profile.Provider); existing != "" && existing != profile.ID {
			return nil, fmt.Errorf("%w: account already linked to another %s identity", ErrIdentityConflict, profile.Provider)
		}
		// refreshExternalUser fills the empty slot and persists it.
		user, err := s.refreshExternalUser(ctx, byEmail, profile)
		if err != nil {
			return nil, err
		}
		s.logger.Info("linked external identity",
			"provider", profile.Provider, "user_id", user.ID.String())
		return user, nil
	}

	user := &models.User{
		Name:         profile.Name,
		Email:        profile.Email,
		Avatar:       profile.AvatarURL,
		AuthProvider: profile.Provider,
		IsVerified:   true,
	}
	user.SetProviderID(profile.Provider, profile.ID)

	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("created user from external identity",
		"provider", profile.Provider, "user_id", user.ID.String())
	return user, nil
}

// LinkAccount manually attaches a provider identity to an existing account.
// The slot must be free on this account and unclaimed by any other.
func (s *Service) LinkAccount(ctx context.Context, userID uuid.UUID, provider, providerID string) (*models.User, error) {
	if provider != models.ProviderGoogle && provider != models.ProviderGithub {
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
	if providerID == "" {
		return nil, &ValidationError{Fields: []string{"providerId is required"}}
	}

	holder, err := s.users.ByProviderID(ctx, provider, providerID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if holder != nil && holder.ID != userID {
		return nil, fmt.Errorf("%w: %s identity already claimed", ErrIdentityConflict, provider)
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing := user.ProviderID(provider); existing != "" {
		if existing == providerID {
			return user, nil
		}
		return nil, fmt.Errorf("%w: account already linked to another %s identity", ErrIdentityConflict, provider)
	}

	user.SetProviderID(provider, providerID)
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			return nil, fmt.Errorf("%w: %s identity already claimed", ErrIdentityConflict, provider)
		}
		return nil, err
	}

	s.logger.Info("manually linked identity", "provider", provider, "user_id", userID.String())
	return user, nil
}

// refreshExternalUser applies the per-login touches a successful external
// sign-in makes: the provider vouched for the email, and an empty avatar is
// backfilled from the provider. An avatar the user set is left alone.
func (s *Service) refreshExternalUser(ctx context.Context, user *models.User, profile *ExternalProfile) (*models.User, error) {
	changed := false
	if !user.IsVerified {
		user.IsVerified = true
		changed = true
	}
	if user.Avatar == "" && profile.AvatarURL != "" {
		user.Avatar = profile.AvatarURL
		changed = true
	}
	if user.ProviderID(profile.Provider) == "" {
		user.SetProviderID(profile.Provider, profile.ID)
		changed = true
	}

	if changed {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}
