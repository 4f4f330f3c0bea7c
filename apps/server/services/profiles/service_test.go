package profiles

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/finboard/finboard/apps/server/services/authn"
	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/fauth"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUsers) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUsers) Update(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return db.ErrNotFound
	}
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return db.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUsers) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	f.users[u.ID] = &cp
	return u
}

// fakeAssets records deletes so tests can assert on avatar cleanup.
type fakeAssets struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeAssets) Save(_ context.Context, filename string, _ io.Reader, _ int64, _ string) (string, error) {
	return "avatars/" + filename, nil
}

func (f *fakeAssets) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeAssets) URL(key string) string { return "/uploads/" + key }

func (f *fakeAssets) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func strp(s string) *string { return &s }

func testService() (*Service, *fakeUsers, *fakeAssets) {
	users := newFakeUsers()
	assets := &fakeAssets{}
	return New(users, assets, flog.NewQuiet()), users, assets
}

func TestUpdatePartialFields(t *testing.T) {
	svc, users, _ := testService()
	ctx := context.Background()

	u := users.add(&models.User{
		Name:  "Ada",
		Email: "ada@example.com",
		Phone: "123",
	})

	got, err := svc.Update(ctx, u.ID, UpdateParams{
		Name:  strp("Ada Lovelace"),
		Phone: strp(""),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != "Ada Lovelace" {
		t.Fatalf("name not updated: %q", got.Name)
	}
	if got.Phone != "" {
		t.Fatalf("phone not cleared: %q", got.Phone)
	}
	if got.Email != "ada@example.com" {
		t.Fatalf("email changed without being set: %q", got.Email)
	}
}

func TestUpdateEmailConflict(t *testing.T) {
	svc, users, _ := testService()
	ctx := context.Background()

	users.add(&models.User{Name: "Other", Email: "taken@example.com"})
	u := users.add(&models.User{Name: "Ada", Email: "ada@example.com"})

	_, err := svc.Update(ctx, u.ID, UpdateParams{Email: strp("Taken@Example.com")})
	if !errors.Is(err, authn.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateSameEmailIsNoConflict(t *testing.T) {
	svc, users, _ := testService()
	ctx := context.Background()

	u := users.add(&models.User{Name: "Ada", Email: "ada@example.com"})
	if _, err := svc.Update(ctx, u.ID, UpdateParams{Email: strp("ADA@example.com")}); err != nil {
		t.Fatalf("updating to own email should succeed: %v", err)
	}
}

func TestUpdatePasswordRehashes(t *testing.T) {
	svc, users, _ := testService()
	ctx := context.Background()

	u := users.add(&models.User{Name: "Ada", Email: "ada@example.com"})

	got, err := svc.Update(ctx, u.ID, UpdateParams{Password: strp("new-password")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !fauth.VerifyPassword("new-password", got.PasswordHash) {
		t.Fatal("new password does not verify against stored hash")
	}

	_, err = svc.Update(ctx, u.ID, UpdateParams{Password: strp("short")})
	var verr *authn.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for short password, got %v", err)
	}
}

func TestUpdateAvatarDeletesOldLocalAsset(t *testing.T) {
	svc, users, assets := testService()
	ctx := context.Background()

	u := users.add(&models.User{
		Name:   "Ada",
		Email:  "ada@example.com",
		Avatar: "avatars/avatar-1-old.png",
	})

	got, err := svc.Update(ctx, u.ID, UpdateParams{AvatarKey: strp("avatars/avatar-2-new.png")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Avatar != "avatars/avatar-2-new.png" {
		t.Fatalf("avatar not replaced: %q", got.Avatar)
	}

	deleted := assets.deletedKeys()
	if len(deleted) != 1 || deleted[0] != "avatars/avatar-1-old.png" {
		t.Fatalf("expected old asset deleted, got %v", deleted)
	}
}

func TestUpdateAvatarKeepsExternalURL(t *testing.T) {
	svc, users, assets := testService()
	ctx := context.Background()

	u := users.add(&models.User{
		Name:   "Ada",
		Email:  "ada@example.com",
		Avatar: "https://lh3.googleusercontent.com/a/photo",
	})

	if _, err := svc.Update(ctx, u.ID, UpdateParams{AvatarKey: strp("avatars/avatar-2-new.png")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(assets.deletedKeys()) != 0 {
		t.Fatalf("external avatar URL must never be deleted, got %v", assets.deletedKeys())
	}
}

func TestUpdateFailureRemovesUploadedAvatar(t *testing.T) {
	svc, users, assets := testService()
	ctx := context.Background()

	users.add(&models.User{Name: "Other", Email: "taken@example.com"})
	u := users.add(&models.User{Name: "Ada", Email: "ada@example.com"})

	_, err := svc.Update(ctx, u.ID, UpdateParams{
		Email:     strp("taken@example.com"),
		AvatarKey: strp("avatars/avatar-9-orphan.png"),
	})
	if !errors.Is(err, authn.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	deleted := assets.deletedKeys()
	if len(deleted) != 1 || deleted[0] != "avatars/avatar-9-orphan.png" {
		t.Fatalf("expected orphaned upload removed, got %v", deleted)
	}
}

func TestDeleteAccountRemovesLocalAvatar(t *testing.T) {
	svc, users, assets := testService()
	ctx := context.Background()

	u := users.add(&models.User{
		Name:   "Ada",
		Email:  "ada@example.com",
		Avatar: "avatars/avatar-1-old.png",
	})

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := users.ByID(ctx, u.ID); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("user still present after delete: %v", err)
	}

	deleted := assets.deletedKeys()
	if len(deleted) != 1 || deleted[0] != "avatars/avatar-1-old.png" {
		t.Fatalf("expected avatar asset deleted, got %v", deleted)
	}
}

func TestDeleteAccountKeepsExternalAvatar(t *testing.T) {
	svc, users, assets := testService()
	ctx := context.Background()

	u := users.add(&models.User{
		Name:   "Ada",
		Email:  "ada@example.com",
		Avatar: "https://avatars.githubusercontent.com/u/1",
	})

	if err := svc.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(assets.deletedKeys()) != 0 {
		t.Fatalf("external avatar must not be deleted, got %v", assets.deletedKeys())
	}
}

func TestDeleteMissingAccount(t *testing.T) {
	svc, _, _ := testService()

	if err := svc.Delete(context.Background(), uuid.New()); !errors.Is(err, db.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
