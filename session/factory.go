// Package session holds the shared session object and the concurrency-safe
// registry that maps affinity tokens to live sessions.
package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/creastat/rpcsession"
)

// RegistryType represents the type of session registry.
type RegistryType string

const (
	RegistryTypeMemory RegistryType = "memory"
)

// NewRegistry creates a new Registry of the given type.
// Only the "memory" driver exists today: a registry entry must resolve to
// the same shared *Session on every lookup, which rules out drivers that
// hand out decoded copies of remote state.
func NewRegistry(registryType RegistryType, opts ...RegistryOption) (Registry, error) {
	config := &registryConfig{
		logger: zerolog.Nop(),
	}

	// Apply options
	for _, opt := range opts {
		opt(config)
	}

	if config.tokens == nil {
		config.tokens = rpcsession.UUIDTokenGenerator()
	}

	switch registryType {
	case RegistryTypeMemory:
		return &memoryRegistry{
			sessions: make(map[string]*Session),
			tokens:   config.tokens,
			logger:   config.logger,
			onEvict:  config.onEvict,
		}, nil

	default:
		return nil, rpcsession.ErrInvalidRegistryType
	}
}

// memoryRegistry implements Registry with an in-memory map guarded by a
// single reader/writer lock. The lock covers map access only; it is never
// held across handler execution or hook invocation.
type memoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	tokens   rpcsession.TokenGenerator
	logger   zerolog.Logger
	onEvict  func(token string, sess *Session)
}

// Create implements Registry.
func (r *memoryRegistry) Create() (string, *Session, error) {
	token := r.tokens()
	if token == "" {
		return "", nil, rpcsession.ErrInvalidConfig
	}
	sess := New(token)

	r.mu.Lock()
	r.sessions[token] = sess
	r.mu.Unlock()

	r.logger.Debug().Str("token", token).Msg("session created")
	return token, sess, nil
}

// Lookup implements Registry.
func (r *memoryRegistry) Lookup(token string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.sessions[token]
	if !exists {
		return nil, rpcsession.ErrNotFound
	}
	return sess, nil
}

// Remove implements Registry.
func (r *memoryRegistry) Remove(token string) error {
	r.mu.Lock()
	sess, exists := r.sessions[token]
	if exists {
		delete(r.sessions, token)
	}
	r.mu.Unlock()

	if !exists {
		return rpcsession.ErrNotFound
	}

	r.logger.Debug().Str("token", token).Msg("session removed")
	if r.onEvict != nil {
		r.onEvict(token, sess)
	}
	return nil
}

// Len implements Registry.
func (r *memoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Close implements Registry.
func (r *memoryRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = nil
	return nil
}
