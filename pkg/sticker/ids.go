package sticker

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out identity tokens for new images
type IDGenerator interface {
	NewID() string
}

// Sequence is a deterministic IDGenerator producing prefix-1, prefix-2, ...
type Sequence struct {
	prefix string
	next   atomic.Uint64
}

// NewSequence creates a counter-based generator
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next ID in the sequence
func (s *Sequence) NewID() string {
	return fmt.Sprintf("%s-%d", s.prefix, s.next.Add(1))
}

// UUIDGenerator produces random version 4 UUIDs
type UUIDGenerator struct{}

// NewID returns a new random UUID
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
