package client

import (
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "finboard"

// normalizeKey converts a baseURL into a stable key name for keyring storage
// so https://example.com/ and https://example.com do not create duplicates.
func normalizeKey(baseURL string) string {
	s := strings.TrimSpace(baseURL)
	s = strings.TrimRight(s, "/")
	s = strings.ToLower(s)
	return s
}

// SaveToken stores the token in the OS keyring under the normalized baseURL.
func SaveToken(baseURL, token string) error {
	return keyring.Set(keyringService, normalizeKey(baseURL), token)
}

// LoadToken retrieves the token stored for the given baseURL.
func LoadToken(baseURL string) (string, error) {
	return keyring.Get(keyringService, normalizeKey(baseURL))
}

// DeleteToken removes the token entry for the given baseURL, for logout.
func DeleteToken(baseURL string) error {
	return keyring.Delete(keyringService, normalizeKey(baseURL))
}
