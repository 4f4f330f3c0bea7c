package authn

import (
	"context"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/google/uuid"
)

// Users is the persistence surface the auth service needs. The bun-backed
// db.UserStore satisfies it; tests use an in-memory fake. Lookups return
// db.ErrNotFound for missing rows; writes return db.ErrConflict on
// unique-constraint violations.
type Users interface {
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByProviderID(ctx context.Context, provider, providerID string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	CountByProvider(ctx context.Context, provider string) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	List(ctx context.Context, page, limit int) ([]models.User, int, error)
}
