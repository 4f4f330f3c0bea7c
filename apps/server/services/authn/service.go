// Package authn implements local registration/login, bearer-token issuance
// and verification, and the OAuth identity resolution that unifies external
// identities with local accounts.
package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finboard/finboard/apps/server/config"
	"github.com/finboard/finboard/pkg/db"
	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/fauth"
	"github.com/finboard/finboard/pkg/flog"
	"github.com/finboard/finboard/pkg/kv"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	// TokenIssuer and TokenAudience are the iss/aud claims of every access
	// token this deployment mints.
	TokenIssuer   = "finboard"
	TokenAudience = "finboard"

	kvPrefixState     = "auth:state:"
	kvPrefixStateUsed = "auth:state:used:"
)

// Service holds the configured credentials and collaborators for every
// authentication path. It is constructed once at startup and handed to the
// route handlers; nothing here mutates process-global state.
type Service struct {
	users  Users
	state  kv.Store
	logger *flog.Logger

	jwtSecret []byte
	tokenTTL  time.Duration
	stateTTL  time.Duration

	google *oauth2.Config
	github *oauth2.Config
}

// New wires a Service from the validated environment. Providers without
// client credentials stay nil and their routes answer "not configured".
func New(cfg *config.EnvConfig, users Users, state kv.Store, logger *flog.Logger) *Service {
	svc := &Service{
		users:     users,
		state:     state,
		logger:    logger,
		jwtSecret: []byte(cfg.AuthSecret),
		tokenTTL:  time.Duration(cfg.TokenTTL) * time.Second,
		stateTTL:  time.Duration(cfg.StateTTL) * time.Second,
	}

	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		svc.google = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
			RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.BaseURL),
		}
	} else {
		logger.Info("google oauth not configured", "hint", "set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET to enable")
	}

	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		svc.github = &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     github.Endpoint,
			Scopes:       []string{"user:email"},
			RedirectURL:  fmt.Sprintf("%s/auth/github/callback", cfg.BaseURL),
		}
	} else {
		logger.Info("github oauth not configured", "hint", "set GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET to enable")
	}

	return svc
}

func foldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IssueToken mints an HS256 access token whose subject is the user ID.
// A missing signing secret is a deployment fault, not a request fault.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("auth secret is not configured")
	}

	now := time.Now()
	claims := fauth.ToClaims(&fauth.UserClaims{
		ID:  userID.String(),
		Iss: TokenIssuer,
		Aud: TokenAudience,
		Iat: now.Unix(),
		Exp: now.Add(s.tokenTTL).Unix(),
	})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// VerifyToken checks the signature, expiry and audience of an access token.
// Expiry and malformedness come back as distinct sentinel errors; the gate
// surfaces both as 401 but logs them apart.
func (s *Service) VerifyToken(tokenString string) (*fauth.UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	uc, err := fauth.FromMapClaims(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if uc.Aud != TokenAudience {
		return nil, fmt.Errorf("%w: invalid audience %q", ErrTokenMalformed, uc.Aud)
	}

	return uc, nil
}

// Authenticate resolves a bearer token to a live user record. A valid token
// whose subject has since been deleted fails with ErrStaleToken.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	uc, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(uc.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid subject", ErrTokenMalformed)
	}

	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrStaleToken
		}
		return nil, err
	}
	return user, nil
}

// RegisterParams carries a local registration. AvatarKey is the storage key
// of an already-persisted upload, or empty.
type RegisterParams struct {
	Name      string
	Email     string
	Password  string
	Phone     string
	Instagram string
	Leetcode  string
	AvatarKey string
}

// Register creates a local account and mints its first token.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*models.User, string, error) {
	var fields []string
	if strings.TrimSpace(p.Name) == "" {
		fields = append(fields, "name is required")
	}
	if foldEmail(p.Email) == "" {
		fields = append(fields, "email is required")
	}
	if p.Password == "" {
		fields = append(fields, "password is required")
	} else if len(p.Password) < 6 {
		fields = append(fields, "password must be at least 6 characters")
	}
	if len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	email := foldEmail(p.Email)
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, "", err
	}

	hash, err := fauth.HashPassword(p.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         strings.TrimSpace(p.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(p.Phone),
		Instagram:    strings.TrimSpace(p.Instagram),
		Leetcode:     strings.TrimSpace(p.Leetcode),
		Avatar:       p.AvatarKey,
		AuthProvider: models.ProviderLocal,
		IsVerified:   false,
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, db.ErrConflict) {
			// Lost a race with a concurrent registration for the same email.
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "user_id", user.ID.String(), "email", user.Email)
	return user, token, nil
}

// Login checks email/password and mints a token. OAuth-only accounts fail
// with ErrNoPassword so the client can steer the user to social login.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if foldEmail(email) == "" || password == "" {
		return nil, "", &ValidationError{Fields: []string{"email and password are required"}}
	}

	user, err := s.users.ByEmail(ctx, foldEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if user.PasswordHash == "" {
		return nil, "", ErrNoPassword
	}
	if !fauth.VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UserByID loads a fresh user record, for handlers that must not serve a
// principal snapshot.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.ByID(ctx, id)
}
