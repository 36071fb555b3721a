package rpcsession

import "errors"

// Common errors for the session-affinity subsystem.
var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrInvalidRegistryType = errors.New("invalid registry type")

	// ErrNotFound is returned by Registry.Lookup and Registry.Remove for a
	// token with no live entry.
	ErrNotFound = errors.New("session not found")

	// ErrEmptyToken rejects a call that presented the affinity cookie with
	// an empty value. An empty token is never legal.
	ErrEmptyToken = errors.New("empty session token presented")

	// ErrUnknownToken rejects a call that presented a token the registry
	// does not know about.
	ErrUnknownToken = errors.New("unknown or expired session token")

	// ErrUnsetValue is returned when a wire-level option value selects no
	// case. Decoding never falls back to a default.
	ErrUnsetValue = errors.New("unset session option value")

	// ErrUnknownStatus is returned when a wire-level status code falls
	// outside the declared enumeration.
	ErrUnknownStatus = errors.New("unknown status code")
)
