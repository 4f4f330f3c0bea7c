package fstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "uploads", "avatars")
	s, err := NewLocalStore(dir, "http://localhost:5000")
	if err != nil {
		t.Fatalf("NewLocalStore error: %v", err)
	}
	return s
}

func TestLocalStoreSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	key, err := s.Save(ctx, "me.png", strings.NewReader("fake-image-bytes"), 16, "image/png")
	if err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if !strings.HasSuffix(key, ".png") {
		t.Fatalf("expected key to keep extension, got %q", key)
	}

	data, err := os.ReadFile(filepath.FromSlash(key))
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("unexpected file contents: %q", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := os.Stat(filepath.FromSlash(key)); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone, stat err=%v", err)
	}

	// Deleting twice is fine.
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete error: %v", err)
	}
}

func TestLocalStoreDeleteRefusesOutsideKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	marker := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if err := s.Delete(ctx, marker); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("file outside the store must not be deleted: %v", err)
	}
}

func TestLocalStoreURL(t *testing.T) {
	s := newTestStore(t)

	url := s.URL("uploads/avatars/avatar-x.png")
	if url != "http://localhost:5000/uploads/avatars/avatar-x.png" {
		t.Fatalf("unexpected URL: %q", url)
	}
}

func TestIsExternalURL(t *testing.T) {
	if !IsExternalURL("https://avatars.githubusercontent.com/u/1") {
		t.Fatal("expected https URL to be external")
	}
	if IsExternalURL("uploads/avatars/avatar-x.png") {
		t.Fatal("expected local key to not be external")
	}
	if IsExternalURL("") {
		t.Fatal("expected empty avatar to not be external")
	}
}
