// Package fstore provides avatar asset storage behind a small interface so
// the profile service works against local disk or S3-compatible storage.
package fstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"path"
	"strings"
	"time"
)

// Store is the contract for persisting uploaded avatar assets.
// Keys returned by Save are opaque to callers; they are stored on the user
// record and resolved back to public URLs with URL.
type Store interface {
	// Save persists the asset and returns its storage key.
	// filename is the client-supplied name, used only for its extension.
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)

	// Delete removes the asset for the given key. Deleting a key that no
	// longer exists is not an error.
	Delete(ctx context.Context, key string) error

	// URL resolves a storage key to a URL the frontend can load.
	URL(key string) string
}

// IsExternalURL reports whether an avatar value is a provider-hosted URL
// rather than a key into this store. External avatars are never deleted.
func IsExternalURL(avatar string) bool {
	return strings.HasPrefix(avatar, "http://") || strings.HasPrefix(avatar, "https://")
}

// newAssetName builds a collision-resistant file name preserving the upload's
// extension, e.g. "avatar-1761943082-9f8ab31c.png".
func newAssetName(filename string) string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in no state to serve.
		panic("fstore: crypto/rand failed: " + err.Error())
	}

	ext := strings.ToLower(path.Ext(filename))
	return "avatar-" + time.Now().UTC().Format("20060102150405") + "-" + hex.EncodeToString(buf) + ext
}
