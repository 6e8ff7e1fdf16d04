// Package repository defines the stores behind the storefront and the
// error types they share.  These sentinel values allow higher layers such
// as handlers to distinguish between different failure scenarios: for
// example, ErrForbidden indicates that the caller tried to act on another
// user's booking, while ErrConflict signals that the record's current
// state does not allow the operation (e.g. cancelling a booking whose
// screening has already started).
package repository

import "errors"

// ErrNotFound is returned when a record does not exist.  Handlers should
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because
// of conflicting state. Handlers should translate this into an HTTP
// 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an address that is
// already taken.
var ErrEmailExists = errors.New("email already exists")
