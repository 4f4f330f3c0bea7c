package fauth

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for newly hashed passwords.
const PasswordCost = 12

// HashPassword produces a salted bcrypt digest of the plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash.
// It never returns an error: a malformed or empty stored hash simply fails
// verification, matching the behavior callers want on login paths.
func VerifyPassword(plaintext, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
