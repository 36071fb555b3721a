package session

import (
	"sync"

	"github.com/creastat/rpcsession/option"
)

// Session is a server-side record of client-scoped option state, addressed
// by an opaque affinity token. The token is assigned once at creation and
// never changes.
//
// A Session is shared: the registry holds it for as long as its entry
// lives, and every in-flight call resolved to the same token holds the same
// *Session. All option access goes through the session's own lock, so
// concurrent calls against different sessions never contend with each other
// or with registry inserts. Writes to the same key race last-write-wins.
type Session struct {
	token string

	mu      sync.RWMutex
	options map[string]option.Value
}

// New creates an empty session bound to token.
func New(token string) *Session {
	return &Session{
		token:   token,
		options: make(map[string]option.Value),
	}
}

// Token returns the opaque token the session was registered under.
func (s *Session) Token() string {
	return s.token
}

// GetOption returns the value stored under name, if any.
func (s *Session) GetOption(name string) (option.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.options[name]
	return v, ok
}

// SetOption stores v under name, replacing any previous value.
func (s *Session) SetOption(name string, v option.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.options[name] = v
}

// EraseOption removes the value stored under name. Erasing an absent name
// is a no-op.
func (s *Session) EraseOption(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.options, name)
}

// Snapshot returns a copy of the full option map as of the call.
func (s *Session) Snapshot() map[string]option.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := make(map[string]option.Value, len(s.options))
	for k, v := range s.options {
		m[k] = v
	}
	return m
}

// Len reports the number of options currently set.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.options)
}
