// Package iam resolves bearer tokens into request principals and exposes
// them through the request context.
package iam

import (
	"context"

	"github.com/finboard/finboard/pkg/db/models"
)

type ctxKey string

const principalKey ctxKey = "finboard.principal"

// Principal returns the authenticated user for this request, if any.
func (s *Service) Principal(ctx context.Context) (*models.User, bool) {
	if v := ctx.Value(principalKey); v != nil {
		if p, ok := v.(*models.User); ok {
			return p, true
		}
	}
	return nil, false
}

// Must returns the principal or panics. Only call it from handlers behind
// RequireAuth, where a missing principal is a wiring bug.
func (s *Service) Must(ctx context.Context) *models.User {
	if p, ok := s.Principal(ctx); ok && p != nil {
		return p
	}
	panic("principal missing in context; ensure IAM middleware is installed and auth performed")
}
