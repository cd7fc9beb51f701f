package messaging

import "errors"

// Domain-level error taxonomy. The first four sentinels represent caller
// mistakes and are surfaced as typed error events; deadline expiry maps to
// ErrTimeout, logged in full and surfaced generically.
var (
	ErrValidation       = errors.New("messaging: invalid input")
	ErrPermissionDenied = errors.New("messaging: permission denied")
	ErrNotFound         = errors.New("messaging: not found")
	ErrConflict         = errors.New("messaging: conflict")
	ErrTimeout          = errors.New("messaging: store deadline exceeded")
)
