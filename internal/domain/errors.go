package domain

import "errors"

// Sentinel errors shared across services and handlers. Handlers map these
// to HTTP statuses; the realtime broker maps them to scoped error messages.
var (
	ErrNotFound         = errors.New("not found")
	ErrAccessDenied     = errors.New("access denied")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation failed")
	ErrSessionEnded     = errors.New("session has ended")
	ErrSessionActive    = errors.New("session is still active")
	ErrNotConnected     = errors.New("GitHub account not connected")
)
