// Package ident provides injectable id generation.
package ident

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator produces unique ids for sessions and celebration events.
type Generator interface {
	NewID() string
}

// UUID generates random UUIDv4 ids.
type UUID struct{}

// NewID returns a random UUID string.
func (UUID) NewID() string {
	return uuid.NewString()
}

// Sequence generates deterministic prefixed ids for tests.
type Sequence struct {
	Prefix string
	next   int
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	s.next++
	return fmt.Sprintf("%s-%d", s.Prefix, s.next)
}
