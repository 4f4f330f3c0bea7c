// Package services wires the service layer together for route registration.
package services

import (
	"github.com/finboard/finboard/apps/server/config"
	"github.com/finboard/finboard/apps/server/services/authn"
	"github.com/finboard/finboard/apps/server/services/dash"
	"github.com/finboard/finboard/apps/server/services/iam"
	"github.com/finboard/finboard/apps/server/services/ledger"
	"github.com/finboard/finboard/apps/server/services/profiles"
	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/finboard/finboard/pkg/fstore"
	"github.com/finboard/finboard/pkg/kv"
	"github.com/uptrace/bun"
)

type Services struct {
	Auth     *authn.Service
	IAM      *iam.Service
	Profiles *profiles.Service
	Ledger   *ledger.Service
	Dash     *dash.Service

	Assets fstore.Store
}

func NewServices(cfg *config.EnvConfig, database *bun.DB, kvStore kv.Store, assets fstore.Store, logger *flog.Logger) *Services {
	users := db.NewUserStore(database)
	txs := db.NewTransactionStore(database)

	authSvc := authn.New(cfg, users, kvStore, logger)

	return &Services{
		Auth:     authSvc,
		IAM:      iam.New(authSvc, logger),
		Profiles: profiles.New(users, assets, logger),
		Ledger:   ledger.New(txs, logger),
		Dash:     dash.New(users),
		Assets:   assets,
	}
}
