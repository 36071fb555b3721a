package rpcsession

import "github.com/google/uuid"

// TokenGenerator produces opaque session tokens. Implementations must make
// collisions astronomically unlikely and tokens unpredictable: the registry
// trusts the generator and does not retry on collision. Tests may substitute
// a fixed-sequence generator.
type TokenGenerator func() string

// UUIDTokenGenerator returns the default generator: a random 128-bit UUID
// rendered in its canonical text form.
func UUIDTokenGenerator() TokenGenerator {
	return uuid.NewString
}
