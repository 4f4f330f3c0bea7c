// Package schemas holds the JSON payload shapes shared by route handlers.
package schemas

import (
	"time"

	"github.com/finboard/finboard/pkg/db/models"
	"github.com/finboard/finboard/pkg/fstore"
)

// User is the public user payload. Password hashes and provider identity
// slots never leave the service.
type User struct {
	ID           string    `json:"id" doc:"Unique identifier of the user"`
	Name         string    `json:"name" doc:"Display name"`
	Email        string    `json:"email" doc:"Email address, lowercased"`
	Avatar       string    `json:"avatar,omitempty" doc:"URL of the user's avatar"`
	Phone        string    `json:"phone,omitempty" doc:"Phone number"`
	Instagram    string    `json:"instagram,omitempty" doc:"Instagram handle"`
	Leetcode     string    `json:"leetcode,omitempty" doc:"LeetCode handle"`
	IsVerified   bool      `json:"isVerified" doc:"Whether the email was vouched for by a provider"`
	AuthProvider string    `json:"authProvider" doc:"Origin of the account: local, google or github"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser maps a stored user to its public payload, resolving a stored
// avatar key to a servable URL. Provider-hosted avatar URLs pass through.
func NewUser(u *models.User, assets fstore.Store) User {
	avatar := u.Avatar
	if avatar != "" && !fstore.IsExternalURL(avatar) {
		avatar = assets.URL(avatar)
	}
	return User{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       avatar,
		Phone:        u.Phone,
		Instagram:    u.Instagram,
		Leetcode:     u.Leetcode,
		IsVerified:   u.IsVerified,
		AuthProvider: u.AuthProvider,
		CreatedAt:    u.CreatedAt,
	}
}
