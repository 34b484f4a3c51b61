// Package ident issues the unique identifiers used for QTI items and their
// question-bank references.
package ident

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new identifier on every call. Identifiers always start
// with a letter so they can never collide with numeric option identifiers.
type Generator interface {
	NewID() string
}

// UUID issues "i" + 32 hex characters of a random v4 uuid.
type UUID struct{}

func (UUID) NewID() string {
	return "i" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sequence issues deterministic identifiers: prefix + zero-padded counter.
type Sequence struct {
	Prefix string

	mu sync.Mutex
	n  int
}

func NewSequence(prefix string) *Sequence {
	if prefix == "" {
		prefix = "i"
	}
	return &Sequence{Prefix: prefix}
}

func (s *Sequence) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s%06d", s.Prefix, s.n)
}
