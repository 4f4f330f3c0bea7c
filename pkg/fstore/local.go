package fstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps avatar assets on the local filesystem. Keys are
// slash-separated paths relative to the process working directory
// (e.g. "uploads/avatars/avatar-...png") and are served statically under
// baseURL.
type LocalStore struct {
	dir     string // e.g. "uploads/avatars"
	baseURL string // e.g. "http://localhost:5000"
}

// NewLocalStore creates the upload directory if needed and returns a store
// rooted there.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{
		dir:     filepath.ToSlash(filepath.Clean(dir)),
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Save writes the asset under a fresh collision-resistant name.
func (s *LocalStore) Save(_ context.Context, filename string, r io.Reader, size int64, _ string) (string, error) {
	name := newAssetName(filename)
	dst := filepath.Join(filepath.FromSlash(s.dir), name)

	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	if size > 0 {
		r = io.LimitReader(r, size)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", err
	}

	return s.dir + "/" + name, nil
}

// Delete removes the asset. A key outside the store's directory is refused
// so a corrupted avatar value can never unlink arbitrary files.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	clean := filepath.ToSlash(filepath.Clean(key))
	if !strings.HasPrefix(clean, s.dir+"/") {
		return nil
	}
	err := os.Remove(filepath.FromSlash(clean))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// URL maps a storage key to its static-file URL.
func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Dir returns the root directory assets are stored under, for static serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Ensure LocalStore implements Store.
var _ Store = (*LocalStore)(nil)
