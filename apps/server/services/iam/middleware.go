package iam

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/finboard/finboard/apps/server/services/authn"
	"github.com/finboard/finboard/pkg/flog"
)

// Service turns Authorization headers into principals. Token verification
// and user lookup are delegated to the auth service.
type Service struct {
	auth   *authn.Service
	logger *flog.Logger
}

func New(auth *authn.Service, logger *flog.Logger) *Service {
	return &Service{auth: auth, logger: logger}
}

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Middleware resolves the bearer token, if present, into a principal. It
// never rejects; RequireAuth on protected operations does that.
func (s *Service) Middleware(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		r, _ := humachi.Unwrap(ctx)

		if token := BearerToken(r); token != "" {
			user, err := s.auth.Authenticate(ctx.Context(), token)
			switch {
			case err == nil:
				ctx = huma.WithValue(ctx, principalKey, user)
			case errors.Is(err, authn.ErrTokenExpired):
				s.logger.Debug("rejected expired token")
			case errors.Is(err, authn.ErrStaleToken):
				s.logger.Debug("rejected token for deleted user")
			default:
				s.logger.Warn("rejected malformed token", "error", err)
			}
		}

		next(ctx)
	}
}

// RequireAuth answers 401 for operations that demand a principal.
func (s *Service) RequireAuth(api huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if _, ok := s.Principal(ctx.Context()); !ok {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")
			return
		}
		next(ctx)
	}
}
