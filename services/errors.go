package services

import "errors"

// Error taxonomy surfaced to the API layer. Controllers map these onto HTTP
// statuses; anything else is treated as an internal failure.
var (
	// ErrNotFound - referenced lesson/course/user does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNotStarted - heartbeat/complete called before start.
	ErrNotStarted = errors.New("lesson not started")

	// ErrForbidden - actor's scope does not cover the target user.
	ErrForbidden = errors.New("access denied")

	// ErrInvalidScore - quiz score missing or outside 0-100.
	ErrInvalidScore = errors.New("invalid quiz score")
)
