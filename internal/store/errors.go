package store

import "errors"

// ErrNotFound is returned when a record does not exist, including when it
// exists but is owned by a different user. The two cases are deliberately
// indistinguishable.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUser is returned when a user with the same email already exists.
var ErrDuplicateUser = errors.New("user already exists")
