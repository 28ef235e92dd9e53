package storage

import "errors"

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating a record whose key is taken.
var ErrAlreadyExists = errors.New("already exists")

// ErrConflict is returned when an optimistic write lost a race and retries
// were exhausted.
var ErrConflict = errors.New("concurrent modification")
