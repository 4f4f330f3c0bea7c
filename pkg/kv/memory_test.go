package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "a", []byte("1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "1" {
		t.Fatalf("expected value 1, got %q", got)
	}

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := s.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetNX(ctx, "once", []byte("x"), 0)
	if err != nil || !ok {
		t.Fatalf("first SetNX: ok=%v err=%v", ok, err)
	}

	ok, err = s.SetNX(ctx, "once", []byte("y"), 0)
	if err != nil {
		t.Fatalf("second SetNX error: %v", err)
	}
	if ok {
		t.Fatal("expected second SetNX to report key already set")
	}

	got, err := s.Get(ctx, "once")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(got) != "x" {
		t.Fatalf("expected original value to survive, got %q", got)
	}
}
