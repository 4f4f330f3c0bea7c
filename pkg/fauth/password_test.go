package fauth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal plaintext")
	}

	if !VerifyPassword("secret1", hash) {
		t.Fatal("expected correct password to verify")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatal("expected wrong password to fail verification")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	// A malformed stored hash must fail closed, never panic or error.
	if VerifyPassword("anything", "not-a-bcrypt-hash") {
		t.Fatal("expected malformed hash to fail verification")
	}
	if VerifyPassword("anything", "") {
		t.Fatal("expected empty hash to fail verification")
	}
}
