package authn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/kv"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// stateClaims is the payload of a signed OAuth state token. The nonce is
// also written to the kv store so each state is consumable exactly once.
type stateClaims struct {
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// ExternalProfile is what we extract from a provider after code exchange.
type ExternalProfile struct {
	Provider  string
	ID        string
	Email     string
	Name      string
	AvatarURL string
}

func (s *Service) providerConfig(provider string) (*oauth2.Config, error) {
	switch provider {
	case models.ProviderGoogle:
		if s.google == nil {
			return nil, ErrProviderNotConfigured
		}
		return s.google, nil
	case models.ProviderGithub:
		if s.github == nil {
			return nil, ErrProviderNotConfigured
		}
		return s.github, nil
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
}

// ProviderConfigured reports whether a provider has credentials.
func (s *Service) ProviderConfigured(provider string) bool {
	_, err := s.providerConfig(provider)
	return err == nil
}

// GenerateState mints a signed, single-use state token for an OAuth redirect.
// The nonce is parked in the kv store; ValidateState consumes it.
func (s *Service) GenerateState(ctx context.Context, provider string) (string, error) {
	if _, err := s.providerConfig(provider); err != nil {
		return "", err
	}

	nonce := uuid.NewString()
	now := time.Now()
	claims := stateClaims{
		Nonce: nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   provider,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.stateTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign state token: %w", err)
	}

	if err := s.state.Set(ctx, kvPrefixState+nonce, []byte(provider), s.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state nonce: %w", err)
	}

	return token, nil
}

// ValidateState verifies a state token returned on the callback and consumes
// its nonce. A replayed or foreign state fails with ErrStateReused.
func (s *Service) ValidateState(ctx context.Context, provider, state string) error {
	var claims stateClaims
	token, err := jwt.ParseWithClaims(state, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: %v", ErrStateReused, err)
	}
	if claims.Subject != provider {
		return fmt.Errorf("%w: state issued for %q", ErrStateReused, claims.Subject)
	}

	key := kvPrefixState + claims.Nonce
	if _, err := s.state.Get(ctx, key); err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ErrStateReused
		}
		return fmt.Errorf("failed to look up state nonce: %w", err)
	}

	// SetNX on the used marker is the atomic consume. Concurrent callbacks
	// replaying the same state all pass the Get above; only one wins here.
	ok, err := s.state.SetNX(ctx, kvPrefixStateUsed+claims.Nonce, []byte("1"), s.stateTTL)
	if err != nil {
		return fmt.Errorf("failed to consume state nonce: %w", err)
	}
	if !ok {
		return ErrStateReused
	}

	if err := s.state.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to drop consumed state nonce", "error", err)
	}
	return nil
}

// AuthCodeURL builds the provider consent URL for a pre-generated state.
func (s *Service) AuthCodeURL(provider, state string) (string, error) {
	cfg, err := s.providerConfig(provider)
	if err != nil {
		return "", err
	}
	return cfg.AuthCodeURL(state), nil
}

// ExchangeCode trades the callback authorization code for a provider token.
func (s *Service) ExchangeCode(ctx context.Context, provider, code string) (*oauth2.Token, error) {
	cfg, err := s.providerConfig(provider)
	if err != nil {
		return nil, err
	}
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// FetchProfile pulls the authenticated user's profile from the provider API.
func (s *Service) FetchProfile(ctx context.Context, provider string, token *oauth2.Token) (*ExternalProfile, error) {
	cfg, err := s.providerConfig(provider)
	if err != nil {
		return nil, err
	}
	client := cfg.Client(ctx, token)

	switch provider {
	case models.ProviderGoogle:
		return fetchGoogleProfile(client)
	case models.ProviderGithub:
		return fetchGitHubProfile(client)
	default:
		return nil, fmt.Errorf("unknown oauth provider %q", provider)
	}
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s returned %d: %s", url, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchGoogleProfile(client *http.Client) (*ExternalProfile, error) {
	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := getJSON(client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("google profile has no id")
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	return &ExternalProfile{
		Provider:  models.ProviderGoogle,
		ID:        info.ID,
		Email:     foldEmail(info.Email),
		Name:      name,
		AvatarURL: info.Picture,
	}, nil
}

func fetchGitHubProfile(client *http.Client) (*ExternalProfile, error) {
	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := getJSON(client, "https://api.github.com/user", &user); err != nil {
		return nil, fmt.Errorf("failed to fetch github profile: %w", err)
	}
	if user.ID == 0 {
		return nil, errors.New("github profile has no id")
	}

	email := user.Email
	if email == "" {
		email = primaryGitHubEmail(client)
	}
	if email == "" {
		// Accounts that hide their email still need a stable address for
		// account linking. GitHub guarantees this alias routes to the user.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", user.ID, user.Login)
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	return &ExternalProfile{
		Provider:  models.ProviderGithub,
		ID:        fmt.Sprintf("%d", user.ID),
		Email:     foldEmail(email),
		Name:      name,
		AvatarURL: user.AvatarURL,
	}, nil
}

func primaryGitHubEmail(client *http.Client) string {
	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := getJSON(client, "https://api.github.com/user/emails", &emails); err != nil {
		return ""
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email
		}
	}
	return ""
}
