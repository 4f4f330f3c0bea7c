package dash

import (
	"context"
	"testing"
	"time"

	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
)

type fakeUsers struct {
	users []models.User
}

func (f *fakeUsers) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeUsers) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

func (f *fakeUsers) CountByProvider(_ context.Context, provider string) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.AuthProvider == provider {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) List(_ context.Context, page, limit int) ([]models.User, int, error) {
	total := len(f.users)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return f.users[start:end], total, nil
}

func seedUsers() *fakeUsers {
	now := time.Now()
	old := now.Add(-60 * 24 * time.Hour)
	mk := func(provider string, created time.Time) models.User {
		return models.User{ID: uuid.New(), AuthProvider: provider, CreatedAt: created}
	}
	return &fakeUsers{users: []models.User{
		mk(models.ProviderLocal, now),
		mk(models.ProviderLocal, old),
		mk(models.ProviderGoogle, now),
		mk(models.ProviderGithub, old),
	}}
}

func TestStats(t *testing.T) {
	svc := New(seedUsers())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalUsers != 4 {
		t.Fatalf("expected 4 total users, got %d", stats.TotalUsers)
	}
	if stats.LocalUsers != 2 || stats.GoogleUsers != 1 || stats.GithubUsers != 1 {
		t.Fatalf("unexpected provider split: %+v", stats)
	}
	if stats.NewUsers30d != 2 {
		t.Fatalf("expected 2 new users in window, got %d", stats.NewUsers30d)
	}
}

func TestListUsersClampsAndPaginates(t *testing.T) {
	svc := New(seedUsers())

	page, err := svc.ListUsers(context.Background(), 0, 3)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if page.CurrentPage != DefaultPage {
		t.Fatalf("expected clamped page %d, got %d", DefaultPage, page.CurrentPage)
	}
	if len(page.Users) != 3 || page.Total != 4 || page.TotalPages != 2 {
		t.Fatalf("unexpected envelope: users=%d total=%d pages=%d", len(page.Users), page.Total, page.TotalPages)
	}
}
