package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/schemas"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/pkg/db"
	"github.com/google/uuid"
)

type DashboardStatsOutput struct {
	Body schemas.DashboardStats
}

type ListUsersInput struct {
	Page  int `query:"page" default:"1" minimum:"1"`
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"100"`
}

type ListUsersOutput struct {
	Body schemas.UserList
}

type UserByIDInput struct {
	ID uuid.UUID `path:"id" doc:"User ID"`
}

func RegisterDashboard(api huma.API, svcs *services.Services) {
	requireAuth := huma.Middlewares{svcs.IAM.RequireAuth(api)}

	huma.Register(api, huma.Operation{
		OperationID: "dashboard-stats",
		Method:      http.MethodGet,
		Path:        "/dashboard/stats",
		Summary:     "Aggregate user statistics",
		Tags:        []string{TagDashboard.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *struct{}) (*DashboardStatsOutput, error) {
		stats, err := svcs.Dash.Stats(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to compute stats", err)
		}

		resp := &DashboardStatsOutput{}
		resp.Body = schemas.DashboardStats{
			TotalUsers:  stats.TotalUsers,
			LocalUsers:  stats.LocalUsers,
			GoogleUsers: stats.GoogleUsers,
			GithubUsers: stats.GithubUsers,
			NewUsers30d: stats.NewUsers30d,
		}
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dashboard-users",
		Method:      http.MethodGet,
		Path:        "/dashboard/users",
		Summary:     "List users",
		Tags:        []string{TagDashboard.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
		page, err := svcs.Dash.ListUsers(ctx, input.Page, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}

		resp := &ListUsersOutput{}
		resp.Body.Users = make([]schemas.User, 0, len(page.Users))
		for i := range page.Users {
			resp.Body.Users = append(resp.Body.Users, schemas.NewUser(&page.Users[i], svcs.Assets))
		}
		resp.Body.Total = page.Total
		resp.Body.TotalPages = page.TotalPages
		resp.Body.CurrentPage = page.CurrentPage
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dashboard-user",
		Method:      http.MethodGet,
		Path:        "/dashboard/users/{id}",
		Summary:     "Get one user",
		Tags:        []string{TagDashboard.String()},
		Security:    BearerAuth,
		Middlewares: requireAuth,
	}, func(ctx context.Context, input *UserByIDInput) (*UserOutput, error) {
		user, err := svcs.Dash.UserByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to load user", err)
		}

		resp := &UserOutput{}
		resp.Body.Message = "ok"
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})
}
