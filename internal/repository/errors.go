// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrConflict signals that an operation cannot proceed
// because of existing dependent records (e.g. deleting a leave type
// that still has requests).
package repository

import "errors"

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as removing a leave
// type that is still referenced by requests or balances. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrOverlap is returned when a new leave request shares at least one
// calendar day with an existing pending or approved request of the
// same user. Handlers should translate this into an HTTP 409
// response with the dedicated overlap message.
var ErrOverlap = errors.New("overlapping leave request")
