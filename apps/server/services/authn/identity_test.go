package authn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/finboard/finboard/pkg/kv"
	"github.com/golang-jwt/jwt/v5"
)

func googleProfile() *ExternalProfile {
	return &ExternalProfile{
		Provider:  models.ProviderGoogle,
		ID:        "g-12345",
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		AvatarURL: "https://lh3.googleusercontent.com/a/photo",
	}
}

func TestResolveIdentityCreatesUser(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	user, err := svc.ResolveIdentity(ctx, googleProfile())
	if err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}
	if user.AuthProvider != models.ProviderGoogle {
		t.Fatalf("expected google origin, got %q", user.AuthProvider)
	}
	if !user.IsVerified {
		t.Fatal("externally created user should be verified")
	}
	if user.GoogleID != "g-12345" {
		t.Fatalf("provider identity not recorded: %q", user.GoogleID)
	}

	n, _ := users.Count(ctx)
	if n != 1 {
		t.Fatalf("expected one user, got %d", n)
	}
}

func TestResolveIdentityIsIdempotent(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	first, err := svc.ResolveIdentity(ctx, googleProfile())
	if err != nil {
		t.Fatalf("first ResolveIdentity failed: %v", err)
	}
	second, err := svc.ResolveIdentity(ctx, googleProfile())
	if err != nil {
		t.Fatalf("second ResolveIdentity failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same identity resolved to two users: %s and %s", first.ID, second.ID)
	}

	n, _ := users.Count(ctx)
	if n != 1 {
		t.Fatalf("expected one user, got %d", n)
	}
}

func TestResolveIdentityLinksByEmail(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	local, _, err := svc.Register(ctx, RegisterParams{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resolved, err := svc.ResolveIdentity(ctx, googleProfile())
	if err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}
	if resolved.ID != local.ID {
		t.Fatalf("expected link to existing account %s, got %s", local.ID, resolved.ID)
	}
	if resolved.GoogleID != "g-12345" {
		t.Fatalf("provider identity not linked: %q", resolved.GoogleID)
	}
	if resolved.AuthProvider != models.ProviderLocal {
		t.Fatalf("creation origin must not change, got %q", resolved.AuthProvider)
	}
	if !resolved.IsVerified {
		t.Fatal("external sign-in should verify the account")
	}
	if resolved.PasswordHash == "" {
		t.Fatal("linking must not drop the password")
	}
}

func TestEmailLinkPersistsProviderIdentity(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	// Google created the account, so it is already verified and carries an
	// avatar. A later github login for the same email must still write the
	// github slot through to the store, not just the returned copy.
	if _, err := svc.ResolveIdentity(ctx, googleProfile()); err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}

	gh := &ExternalProfile{
		Provider:  models.ProviderGithub,
		ID:        "gh-99",
		Email:     "ada@example.com",
		Name:      "Ada Lovelace",
		AvatarURL: "https://avatars.githubusercontent.com/u/99",
	}
	resolved, err := svc.ResolveIdentity(ctx, gh)
	if err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}
	if resolved.GithubID != "gh-99" {
		t.Fatalf("github identity not linked: %q", resolved.GithubID)
	}

	stored, err := users.ByProviderID(ctx, models.ProviderGithub, "gh-99")
	if err != nil {
		t.Fatalf("github identity was never persisted: %v", err)
	}
	if stored.ID != resolved.ID {
		t.Fatalf("identity stored on wrong account: %s != %s", stored.ID, resolved.ID)
	}
}

func TestResolveIdentityBackfillsAvatarOnlyWhenEmpty(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	if _, err := svc.ResolveIdentity(ctx, googleProfile()); err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}

	// User replaces the avatar; a later login must not clobber it.
	u, err := users.ByProviderID(ctx, models.ProviderGoogle, "g-12345")
	if err != nil {
		t.Fatalf("ByProviderID failed: %v", err)
	}
	u.Avatar = "avatars/avatar-1-abcd.png"
	if err := users.Update(ctx, u); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	resolved, err := svc.ResolveIdentity(ctx, googleProfile())
	if err != nil {
		t.Fatalf("ResolveIdentity failed: %v", err)
	}
	if resolved.Avatar != "avatars/avatar-1-abcd.png" {
		t.Fatalf("avatar clobbered by provider value: %q", resolved.Avatar)
	}
}

func TestResolveIdentityConflict(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	// Account A holds the provider identity under a different email.
	a := &models.User{
		Name:         "A",
		Email:        "a@example.com",
		GoogleID:     "g-12345",
		AuthProvider: models.ProviderGoogle,
		IsVerified:   true,
	}
	if err := users.Insert(ctx, a); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	// Account B owns the profile's email.
	b := &models.User{Name: "B", Email: "ada@example.com", AuthProvider: models.ProviderLocal}
	if err := users.Insert(ctx, b); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := svc.ResolveIdentity(ctx, googleProfile()); !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("expected ErrIdentityConflict, got %v", err)
	}
}

func TestResolveIdentityRejectsSecondProviderIdentity(t *testing.T) {
	svc, users := testService(t)
	ctx := context.Background()

	u := &models.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		GoogleID:     "g-other",
		AuthProvider: models.ProviderGoogle,
		IsVerified:   true,
	}
	if err := users.Insert(ctx, u); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if _, err := svc.ResolveIdentity(ctx, googleProfile()); !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("expected ErrIdentityConflict for second google identity, got %v", err)
	}
}

func TestLinkAccount(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterParams{Name: "Ada", Email: "ada@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	linked, err := svc.LinkAccount(ctx, user.ID, models.ProviderGithub, "gh-77")
	if err != nil {
		t.Fatalf("LinkAccount failed: %v", err)
	}
	if linked.GithubID != "gh-77" {
		t.Fatalf("identity not linked: %q", linked.GithubID)
	}

	// Linking the same identity again is a no-op.
	if _, err := svc.LinkAccount(ctx, user.ID, models.ProviderGithub, "gh-77"); err != nil {
		t.Fatalf("re-link failed: %v", err)
	}

	// A different identity in an occupied slot is rejected.
	if _, err := svc.LinkAccount(ctx, user.ID, models.ProviderGithub, "gh-88"); !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("expected ErrIdentityConflict, got %v", err)
	}

	// Another user cannot claim the same identity.
	other, _, err := svc.Register(ctx, RegisterParams{Name: "Bob", Email: "bob@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.LinkAccount(ctx, other.ID, models.ProviderGithub, "gh-77"); !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("expected ErrIdentityConflict for claimed identity, got %v", err)
	}
}

func oauthService(t *testing.T) (*Service, kv.Store) {
	t.Helper()
	cfg := testConfig()
	cfg.GoogleClientID = "client-id"
	cfg.GoogleClientSecret = "client-secret"
	state := kv.NewMemoryStore()
	return New(cfg, newFakeUsers(), state, flog.NewQuiet()), state
}

func TestStateSingleUse(t *testing.T) {
	svc, _ := oauthService(t)
	ctx := context.Background()

	state, err := svc.GenerateState(ctx, models.ProviderGoogle)
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	if err := svc.ValidateState(ctx, models.ProviderGoogle, state); err != nil {
		t.Fatalf("ValidateState failed: %v", err)
	}
	if err := svc.ValidateState(ctx, models.ProviderGoogle, state); !errors.Is(err, ErrStateReused) {
		t.Fatalf("expected ErrStateReused on replay, got %v", err)
	}
}

func TestStateConsumeIsAtomic(t *testing.T) {
	svc, store := oauthService(t)
	ctx := context.Background()

	state, err := svc.GenerateState(ctx, models.ProviderGoogle)
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	if err := svc.ValidateState(ctx, models.ProviderGoogle, state); err != nil {
		t.Fatalf("ValidateState failed: %v", err)
	}

	// A racing callback can read the nonce before the winner deletes it.
	// Even with the nonce back in the store, the used marker must reject
	// the replay.
	var claims stateClaims
	if _, err := jwt.ParseWithClaims(state, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testConfig().AuthSecret), nil
	}); err != nil {
		t.Fatalf("failed to parse state token: %v", err)
	}
	if err := store.Set(ctx, kvPrefixState+claims.Nonce, []byte(models.ProviderGoogle), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := svc.ValidateState(ctx, models.ProviderGoogle, state); !errors.Is(err, ErrStateReused) {
		t.Fatalf("expected ErrStateReused, got %v", err)
	}
}

func TestStateRejectsWrongProvider(t *testing.T) {
	svc, _ := oauthService(t)
	ctx := context.Background()

	state, err := svc.GenerateState(ctx, models.ProviderGoogle)
	if err != nil {
		t.Fatalf("GenerateState failed: %v", err)
	}
	if err := svc.ValidateState(ctx, models.ProviderGithub, state); !errors.Is(err, ErrStateReused) {
		t.Fatalf("expected ErrStateReused for provider mismatch, got %v", err)
	}
}

func TestStateRejectsForgery(t *testing.T) {
	svc, _ := oauthService(t)
	ctx := context.Background()

	if err := svc.ValidateState(ctx, models.ProviderGoogle, "forged-state"); !errors.Is(err, ErrStateReused) {
		t.Fatalf("expected ErrStateReused for forged state, got %v", err)
	}
}

func TestGenerateStateUnconfiguredProvider(t *testing.T) {
	svc, _ := testService(t)

	if _, err := svc.GenerateState(context.Background(), models.ProviderGithub); !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}
