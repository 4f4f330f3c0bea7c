package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
	"github.com/finboard/finboard/apps/server/config"
	"github.com/finboard/finboard/apps/server/schemas"
	"github.com/finboard/finboard/apps/server/services"
	"github.com/finboard/finboard/apps/server/services/authn"
)

type OAuthStartInput struct {
	Provider string `path:"provider" enum:"google,github" doc:"OAuth provider"`
}

type OAuthRedirectOutput struct {
	Status   int
	Location string `header:"Location"`
}

type OAuthCallbackInput struct {
	Provider string `path:"provider" enum:"google,github" doc:"OAuth provider"`
	Code     string `query:"code" doc:"Authorization code from the provider"`
	State    string `query:"state" doc:"State parameter for CSRF validation"`
	Error    string `query:"error" doc:"Provider-reported error, e.g. access_denied"`
}

func RegisterOAuth(api huma.API, cfg *config.EnvConfig, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "oauth-start",
		Method:      http.MethodGet,
		Path:        "/auth/{provider}",
		Summary:     "Start an OAuth login",
		Description: "Redirects the browser to the provider's consent screen.",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *OAuthStartInput) (*OAuthRedirectOutput, error) {
		state, err := svcs.Auth.GenerateState(ctx, input.Provider)
		if err != nil {
			if errors.Is(err, authn.ErrProviderNotConfigured) {
				return nil, huma.Error501NotImplemented(input.Provider + " login is not configured")
			}
			return nil, huma.Error500InternalServerError("failed to start oauth flow", err)
		}

		authURL, err := svcs.Auth.AuthCodeURL(input.Provider, state)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to build authorization URL", err)
		}

		return &OAuthRedirectOutput{Status: http.StatusFound, Location: authURL}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "oauth-callback",
		Method:      http.MethodGet,
		Path:        "/auth/{provider}/callback",
		Summary:     "OAuth provider callback",
		Description: "Completes the OAuth flow and redirects the browser back to the frontend with a token.",
		Tags:        []string{TagAuth.String()},
	}, func(ctx context.Context, input *OAuthCallbackInput) (*OAuthRedirectOutput, error) {
		fail := func(reason string) *OAuthRedirectOutput {
			return &OAuthRedirectOutput{
				Status:   http.StatusFound,
				Location: cfg.FrontendURL + "/login?error=" + url.QueryEscape(reason),
			}
		}

		if input.Error != "" {
			return fail(input.Error), nil
		}
		if input.Code == "" || input.State == "" {
			return fail("missing code or state"), nil
		}

		if err := svcs.Auth.ValidateState(ctx, input.Provider, input.State); err != nil {
			return fail("invalid or expired state"), nil
		}

		oauthToken, err := svcs.Auth.ExchangeCode(ctx, input.Provider, input.Code)
		if err != nil {
			return fail("authentication failed"), nil
		}

		profile, err := svcs.Auth.FetchProfile(ctx, input.Provider, oauthToken)
		if err != nil {
			return fail("authentication failed"), nil
		}

		user, err := svcs.Auth.ResolveIdentity(ctx, profile)
		if err != nil {
			if errors.Is(err, authn.ErrIdentityConflict) {
				return fail("identity_conflict"), nil
			}
			return fail("authentication failed"), nil
		}

		token, err := svcs.Auth.IssueToken(user.ID)
		if err != nil {
			return fail("authentication failed"), nil
		}

		payload, err := json.Marshal(schemas.NewUser(user, svcs.Assets))
		if err != nil {
			return fail("authentication failed"), nil
		}

		q := url.Values{}
		q.Set("token", token)
		q.Set("user", string(payload))
		return &OAuthRedirectOutput{
			Status:   http.StatusFound,
			Location: cfg.FrontendURL + "/oauth-callback?" + q.Encode(),
		}, nil
	})
}
