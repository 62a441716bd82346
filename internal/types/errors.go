package types

import "errors"

var (
	// ErrNotConfigured: no API credential could be resolved. Chat and
	// retrieval endpoints are disabled; static views keep working.
	ErrNotConfigured = errors.New("model credential not configured")

	// ErrServiceUnavailable: the embedding or completion provider failed.
	// Terminal for the current turn only, never for the process.
	ErrServiceUnavailable = errors.New("model service unavailable")

	ErrSessionNotFound = errors.New("chat session not found")

	// ErrNoCandidates: analytics hold no rankable place for a request.
	ErrNoCandidates = errors.New("no ranked places available")
)
