package testutil

import (
	"fmt"
	"sync"
)

// SequentialSessionIDs names sessions "<prefix>-1", "<prefix>-2", ... so
// that logs from repeated runs of the same scenario line up.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialSessionIDs struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialSessionIDs creates a generator whose first id ends in 1.
// If prefix is empty, "session" is used.
func NewSequentialSessionIDs(prefix string) *SequentialSessionIDs {
	if prefix == "" {
		prefix = "session"
	}
	return &SequentialSessionIDs{prefix: prefix}
}

// Generate returns the next id.
//
// Implements booking.SessionIDGenerator.
func (g *SequentialSessionIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Current returns how many ids have been generated.
func (g *SequentialSessionIDs) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence at 1.
func (g *SequentialSessionIDs) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
