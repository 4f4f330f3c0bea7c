package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auth providers an account can originate from. AuthProvider records the
// creation path only; linked providers live in the per-provider ID slots.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID    uuid.UUID `bun:"type:uuid,default:gen_random_uuid(),pk"`
	Name  string    `bun:",notnull"`
	Email string    `bun:",unique,notnull"` // stored lowercased

	// PasswordHash is set only for accounts created via local registration.
	PasswordHash string `bun:",nullzero"`

	// Provider identity slots. Each value, when set, is unique across users.
	GoogleID string `bun:",nullzero"`
	GithubID string `bun:",nullzero"`

	AuthProvider string `bun:",notnull,default:'local'"`

	// Avatar is either a storage key (fstore) or a provider-hosted URL.
	Avatar     string `bun:",nullzero"`
	Phone      string `bun:",nullzero"`
	Instagram  string `bun:",nullzero"`
	Leetcode   string `bun:",nullzero"`
	IsVerified bool   `bun:",notnull,default:false"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ProviderID returns the identity slot for the named provider.
func (u *User) ProviderID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderGithub:
		return u.GithubID
	}
	return ""
}

// SetProviderID writes the identity slot for the named provider.
func (u *User) SetProviderID(provider, id string) {
	switch provider {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderGithub:
		u.GithubID = id
	}
}
