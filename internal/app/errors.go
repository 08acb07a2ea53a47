package app

import "errors"

var (
	// ErrChannelNotFound is returned when an operation names a channel the
	// directory has already deleted. The caller should re-resolve.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrCredentialProvider wraps a failed or timed-out credential fetch
	// during channel creation. Nothing is inserted; the caller may retry.
	ErrCredentialProvider = errors.New("credential provider failure")
)
