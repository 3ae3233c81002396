package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("not authorized")
	ErrSaveRejected  = errors.New("save rejected by backend")
	ErrSessionClosed = errors.New("session is closed")
	ErrNoVoice       = errors.New("voice capture unavailable")
)
