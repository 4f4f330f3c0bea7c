package kv

import "errors"

// ErrNotFound is returned when a key is absent or its TTL has lapsed. For
// OAuth state nonces the two cases are equivalent: the state is not valid.
var ErrNotFound = errors.New("kv: key not found")
