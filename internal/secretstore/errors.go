package secretstore

import "errors"

var (
	// ErrNotFound is returned by Get/Delete when key has no stored value.
	ErrNotFound = errors.New("secretstore: key not found")
	// ErrPresenceDenied is returned when a presence-bound item's Get is
	// called and the configured PresenceChecker declines the request.
	ErrPresenceDenied = errors.New("secretstore: user presence check denied")
	// ErrAuthFailed is returned by Import on a wrong password or corrupted
	// envelope. It deliberately carries no detail about which check failed.
	ErrAuthFailed = errors.New("secretstore: backup authentication failed")
	// ErrEmptyKey is returned by Put when key is empty.
	ErrEmptyKey = errors.New("secretstore: key must not be empty")
)
