// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let the service layer tell a missing
// row from a constraint violation without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when no row matches the lookup.  Owner-scoped
// lookups return it both when the row is absent and when it belongs to
// another user.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, such as registering a username that is already taken.
var ErrDuplicate = errors.New("duplicate")
