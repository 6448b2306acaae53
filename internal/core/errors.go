package core

import "errors"

var (
	// ErrHubClosed is returned when the hub loop is no longer running.
	ErrHubClosed = errors.New("hub closed")
	// ErrUnknownRoom is returned when a configured room name does not exist.
	ErrUnknownRoom = errors.New("unknown room")
)
