package db

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("db: not found")

// ErrConflict is returned when an insert or update violates a unique
// constraint (duplicate email, duplicate provider identity). Callers should
// treat it as a retryable conflict, not a server fault.
var ErrConflict = errors.New("db: conflict")

// isUniqueViolation reports whether the error is Postgres SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23505"
	}
	return false
}
