// Package repository implements MySQL-backed storage for users, contact
// messages and bookings.  Sentinel errors let handlers translate storage
// failures into specific HTTP responses without inspecting driver errors.
package repository

import "errors"

// ErrEmailExists is returned when an insert violates the unique key on
// users.email.  Uniqueness is enforced by the database, not by a
// check-then-insert, so concurrent registrations for the same email
// resolve to exactly one row.
var ErrEmailExists = errors.New("email already exists")

// ErrUsernameExists is returned when a profile update would take a
// username already held by another account.
var ErrUsernameExists = errors.New("username already taken")
