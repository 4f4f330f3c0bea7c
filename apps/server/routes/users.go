package routes

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/schemas"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/apps/server/services/profiles"
	"github.com/finboard/finboard/pkg/db"
)

type UpdateUserInput struct {
	RawBody multipart.Form
}

type UserOutput struct {
	Body struct {
		Message string       `json:"message"`
		User    schemas.User `json:"user"`
	}
}

type MessageOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

func RegisterUsers(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/user",
		Summary:     "Get the current user's profile",
		Description: "Reads the account fresh from the database rather than the token snapshot.",
		Tags:        []string{TagUsers.String()},
		Security:    BearerAuth,
		Middlewares: huma.Middlewares{svcs.IAM.RequireAuth(api)},
	}, func(ctx context.Context, input *struct{}) (*UserOutput, error) {
		principal := svcs.IAM.Must(ctx)

		user, err := svcs.Auth.UserByID(ctx, principal.ID)
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

	huma.Register(api, huma.Operation{
		OperationID:  "update-user",
		Method:       http.MethodPut,
		Path:         "/user",
		Summary:      "Update the current user's profile",
		Description:  "Partial update from multipart form data. Fields absent from the form keep their value; present-but-empty fields are cleared where legal.",
		Tags:         []string{TagUsers.String()},
		Security:     BearerAuth,
		MaxBodyBytes: maxFormBytes,
		Middlewares:  huma.Middlewares{svcs.IAM.RequireAuth(api)},
	}, func(ctx context.Context, input *UpdateUserInput) (*UserOutput, error) {
		principal := svcs.IAM.Must(ctx)
		form := &input.RawBody

		var p profiles.UpdateParams
		if v, ok := formValue(form, "name"); ok {
			p.Name = &v
		}
		if v, ok := formValue(form, "email"); ok {
			p.Email = &v
		}
		if v, ok := formValue(form, "password"); ok {
			p.Password = &v
		}
		if v, ok := formValue(form, "phone"); ok {
			p.Phone = &v
		}
		if v, ok := formValue(form, "instagram"); ok {
			p.Instagram = &v
		}
		if v, ok := formValue(form, "leetcode"); ok {
			p.Leetcode = &v
		}

		if files := form.File["avatar"]; len(files) > 0 {
			key, err := saveAvatar(ctx, svcs.Assets, files[0])
			if err != nil {
				return nil, err
			}
			p.AvatarKey = &key
		}

		user, err := svcs.Profiles.Update(ctx, principal.ID, p)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, authError(err)
		}

		resp := &UserOutput{}
		resp.Body.Message = "profile updated"
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-user",
		Method:      http.MethodDelete,
		Path:        "/user",
		Summary:     "Delete the current user's account",
		Description: "Removes the account, its transactions and any locally stored avatar.",
		Tags:        []string{TagUsers.String()},
		Security:    BearerAuth,
		Middlewares: huma.Middlewares{svcs.IAM.RequireAuth(api)},
	}, func(ctx context.Context, input *struct{}) (*MessageOutput, error) {
		principal := svcs.IAM.Must(ctx)

		if err := svcs.Profiles.Delete(ctx, principal.ID); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete account", err)
		}

		resp := &MessageOutput{}
		resp.Body.Message = "account deleted"
		return resp, nil
	})
}
