package authn

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike,
	// so login responses never reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoPassword means the account was created through an OAuth provider
	// and has no password to check.
	ErrNoPassword = errors.New("account has no password")

	// ErrEmailTaken means a registration hit an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrIdentityConflict means an external identity and an email resolved to
	// two different accounts, or a provider identity is claimed by another
	// account. Never merged automatically.
	ErrIdentityConflict = errors.New("identity conflict")

	// ErrTokenExpired means the token was well-formed and correctly signed
	// but past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenMalformed covers garbage tokens, bad signatures, wrong signing
	// algorithms and wrong audiences.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrStaleToken means a valid token's subject no longer exists.
	ErrStaleToken = errors.New("token subject no longer exists")

	// ErrProviderNotConfigured means an OAuth route was hit without the
	// provider's client credentials present.
	ErrProviderNotConfigured = errors.New("oauth provider not configured")

	// ErrStateReused means an OAuth state token was already consumed, or
	// never issued by this deployment.
	ErrStateReused = errors.New("state token already used")
)

// ValidationError carries per-field messages for a 400 response.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}
