package shared

import "errors"

// Sentinel errors shared by every domain package. Services wrap these with
// fmt.Errorf("...: %w", ...); the HTTP layer maps them to responses via
// httpx.RespondError.
var (
	// ErrNotFound indicates a targeted or referenced row is absent in the
	// caller's hub. Cross-hub access is reported as ErrNotFound on purpose:
	// a foreign hub's rows must be indistinguishable from nonexistent ones.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation surfaced from the store.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates malformed or semantically invalid input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the caller lacks a required capability.
	ErrUnauthorized = errors.New("unauthorized")
)
