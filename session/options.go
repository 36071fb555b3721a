package session

import (
	"github.com/rs/zerolog"

	"github.com/creastat/rpcsession"
)

// RegistryOption is a functional option for configuring a session registry.
type RegistryOption func(*registryConfig)

// registryConfig holds configuration for session registries.
type registryConfig struct {
	tokens  rpcsession.TokenGenerator
	logger  zerolog.Logger
	onEvict func(token string, sess *Session)
}

// WithTokenGenerator sets the token generator used by Create. Defaults to
// rpcsession.UUIDTokenGenerator().
func WithTokenGenerator(gen rpcsession.TokenGenerator) RegistryOption {
	return func(c *registryConfig) {
		c.tokens = gen
	}
}

// WithLogger sets the logger for registry events. Defaults to a no-op
// logger.
func WithLogger(logger zerolog.Logger) RegistryOption {
	return func(c *registryConfig) {
		c.logger = logger
	}
}

// WithEvictionHook registers a callback invoked after an entry is removed
// from the registry. Eviction policy itself lives with whoever owns process
// lifetime; the registry never evicts on its own. The hook runs outside the
// registry lock.
func WithEvictionHook(hook func(token string, sess *Session)) RegistryOption {
	return func(c *registryConfig) {
		c.onEvict = hook
	}
}
