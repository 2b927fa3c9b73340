package tests

import "errors"

// Error taxonomy surfaced at the request boundary. Validation errors are
// raised before any external call; persistence and upstream errors are
// converted to 5xx with the underlying message passed through.
var (
	ErrMissingInput      = errors.New("required input is missing")
	ErrInvalidInput      = errors.New("invalid URL or domain format")
	ErrNotFound          = errors.New("test not found")
	ErrPersistenceFailed = errors.New("failed to store test result")
	ErrUpstream          = errors.New("upstream analysis service failed")
)
