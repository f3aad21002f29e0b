package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested remote object does not exist. The
	// folder materializer treats it as a positive "create it" signal rather
	// than an application failure.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a sibling with the same name already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrEmptyFile indicates an upload was attempted with a file that has no
	// readable bytes.
	ErrEmptyFile = errors.New("evidence file is empty")

	// ErrInvalidInput indicates malformed caller input, such as an
	// unparseable destination URL.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPermission indicates the remote store refused access. Retrying will
	// not change authorization, so this is surfaced immediately.
	ErrPermission = errors.New("permission denied")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Authentication errors.

	// ErrAuthRequired indicates no credentials are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the bearer token has expired and could not be
	// refreshed.
	ErrAuthExpired = errors.New("authentication expired")
)
