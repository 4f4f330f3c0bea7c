package routes

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/schemas"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/apps/server/services/authn"
)

type RegisterInput struct {
	RawBody multipart.Form
}

type AuthOutput struct {
	Body schemas.AuthResponse
}

type LoginInput struct {
	Body schemas.LoginRequest
}

type LogoutOutput struct {
	Body struct {
		Message string `json:"message"`
	}
}

type LinkInput struct {
	Body struct {
		Provider   string `json:"provider" enum:"google,github"`
		ProviderID string `json:"providerId" minLength:"1"`
	}
}

// authError maps auth service failures to HTTP responses.
func authError(err error) error {
	var verr *authn.ValidationError
	switch {
	case errors.As(err, &verr):
		return huma.Error400BadRequest(verr.Error())
	case errors.Is(err, authn.ErrEmailTaken):
		return huma.Error400BadRequest("user already exists")
	case errors.Is(err, authn.ErrNoPassword):
		return huma.Error400BadRequest("please login with your social account")
	case errors.Is(err, authn.ErrInvalidCredentials):
		return huma.Error401Unauthorized("invalid credentials")
	case errors.Is(err, authn.ErrIdentityConflict):
		return huma.Error409Conflict("this identity is already linked to another account")
	default:
		return huma.Error500InternalServerError("authentication failed", err)
	}
}

func RegisterAuth(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a local account",
		Description:   "Creates an account from multipart form data with an optional avatar image.",
		Tags:          []string{TagAuth.String()},
		MaxBodyBytes:  maxFormBytes,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
		form := &input.RawBody

		name, _ := formValue(form, "name")
		email, _ := formValue(form, "email")
		password, _ := formValue(form, "password")
		phone, _ := formValue(form, "phone")
		instagram, _ := formValue(form, "instagram")
		leetcode, _ := formValue(form, "leetcode")

		var avatarKey string
		if files := form.File["avatar"]; len(files) > 0 {
			key, err := saveAvatar(ctx, svcs.Assets, files[0])
			if err != nil {
				return nil, err
			}
			avatarKey = key
		}

		user, token, err := svcs.Auth.Register(ctx, authn.RegisterParams{
			Name:      name,
			Email:     email,
			Password:  password,
			Phone:     phone,
			Instagram: instagram,
			Leetcode:  leetcode,
			AvatarKey: avatarKey,
		})
		if err != nil {
			// The account was not created; do not leave the upload behind.
			if avatarKey != "" {
				_ = svcs.Assets.Delete(ctx, avatarKey)
			}
			return nil, authError(err)
		}

		resp := &AuthOutput{}
		resp.Body.Message = "registration successful"
		resp.Body.Token = token
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
		user, token, err := svcs.Auth.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, authError(err)
		}

		resp := &AuthOutput{}
		resp.Body.Message = "login successful"
		resp.Body.Token = token
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		Summary:     "Log out",
		Description: "Sessions are stateless; the client discards its token.",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *struct{}) (*LogoutOutput, error) {
		resp := &LogoutOutput{}
		resp.Body.Message = "logged out"
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "link-account",
		Method:      http.MethodPost,
		Path:        "/auth/link",
		Summary:     "Link an external identity to the current account",
		Tags:        []string{TagAuth.String()},
		Security:    BearerAuth,
		Middlewares: huma.Middlewares{svcs.IAM.RequireAuth(api)},
	}, func(ctx context.Context, input *LinkInput) (*AuthOutput, error) {
		principal := svcs.IAM.Must(ctx)

		user, err := svcs.Auth.LinkAccount(ctx, principal.ID, input.Body.Provider, input.Body.ProviderID)
		if err != nil {
			if errors.Is(err, authn.ErrIdentityConflict) {
				return nil, huma.Error400BadRequest("this identity is already linked to another account")
			}
			return nil, authError(err)
		}

		resp := &AuthOutput{}
		resp.Body.Message = "account linked"
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "verify",
		Method:      http.MethodGet,
		Path:        "/auth/verify",
		Summary:     "Verify the current bearer token",
		Description: "Returns the authenticated user; 401 if the token is missing, invalid or stale.",
		Tags:        []string{TagAuth.String()},
		Security:    BearerAuth,
		Middlewares: huma.Middlewares{svcs.IAM.RequireAuth(api)},
	}, func(ctx context.Context, input *struct{}) (*AuthOutput, error) {
		user := svcs.IAM.Must(ctx)

		resp := &AuthOutput{}
		resp.Body.Message = "token valid"
		resp.Body.User = schemas.NewUser(user, svcs.Assets)
		return resp, nil
	})
}
