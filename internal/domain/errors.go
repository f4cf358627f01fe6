package domain

import "errors"

// Error taxonomy of the engine. Callers match with errors.Is; the HTTP
// layer maps ErrNotFound to 404 and ErrPreconditionFailed to 412.
var (
	// ErrNotFound means a referenced period, pop, party or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPreconditionFailed means required snapshot or vote data is absent
	// for the requested period, or no party meets the parliamentary threshold.
	ErrPreconditionFailed = errors.New("precondition failed")
)
