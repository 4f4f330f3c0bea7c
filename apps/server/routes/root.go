// Package routes registers the HTTP surface as huma operations.
package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/config"
	"github.com/finboard/finboard/apps/server/services"
)

func RegisterAPI(api huma.API, cfg *config.EnvConfig, svcs *services.Services) {
	RegisterHealth(api)
	RegisterAuth(api, svcs)
	RegisterOAuth(api, cfg, svcs)
	RegisterUsers(api, svcs)
	RegisterTransactions(api, svcs)
	RegisterDashboard(api, svcs)
}
