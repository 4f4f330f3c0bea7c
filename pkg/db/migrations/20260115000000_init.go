package migrations

import (
	"context"
	"fmt"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [up migration] ")

		// Create users table from struct
		_, err := db.NewCreateTable().
			Model((*models.User)(nil)).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return err
		}

		// Provider identity slots are unique when present. Partial indexes
		// keep NULL (unlinked) rows out of the constraint.
		_, err = db.NewRaw(`CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_key
			ON users (google_id) WHERE google_id IS NOT NULL`).Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw(`CREATE UNIQUE INDEX IF NOT EXISTS users_github_id_key
			ON users (github_id) WHERE github_id IS NOT NULL`).Exec(ctx)
		if err != nil {
			return err
		}
		_, err = db.NewRaw(`CREATE INDEX IF NOT EXISTS users_auth_provider_idx
			ON users (auth_provider)`).Exec(ctx)
		if err != nil {
			return err
		}

		// Create transactions table from struct
		_, err = db.NewCreateTable().
			Model((*models.Transaction)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES users ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return err
		}

		// Listing is always owner-scoped and date-descending.
		_, err = db.NewRaw(`CREATE INDEX IF NOT EXISTS transactions_user_date_idx
			ON transactions (user_id, date DESC)`).Exec(ctx)
		if err != nil {
			return err
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Print(" [down migration] ")

		_, err := db.NewDropTable().Model((*models.Transaction)(nil)).IfExists().Exec(ctx)
		if err != nil {
			return err
		}

		_, err = db.NewDropTable().Model((*models.User)(nil)).IfExists().Exec(ctx)
		if err != nil {
			return err
		}

		return nil
	})
}
