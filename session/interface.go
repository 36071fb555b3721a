package session

// Registry defines the interface for the process-wide token → session map.
type Registry interface {
	// Create mints a fresh token, registers a new empty session under it
	// and returns both. The token is never one already present in the
	// registry.
	Create() (string, *Session, error)

	// Lookup returns the session registered under token.
	// Every lookup of a live token returns the same *Session.
	// Returns ErrNotFound if no entry exists.
	Lookup(token string) (*Session, error)

	// Remove deletes the registry entry for token, so that future lookups
	// fail with ErrNotFound. In-flight holders of the session keep a usable
	// reference; removal never invalidates the object itself.
	// Returns ErrNotFound if no entry exists.
	Remove(token string) error

	// Len reports the number of live entries.
	Len() int

	// Close closes the registry and releases any resources.
	Close() error
}
