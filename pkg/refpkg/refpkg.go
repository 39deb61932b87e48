// Package refpkg generates globally unique transaction reference numbers.
package refpkg

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefix marks reference numbers as transaction references.
const Prefix = "TXN"

// Generator issues reference numbers that are unique across the process
// lifetime and across restarts. The payload is a ULID, so values issued
// by earlier runs sort before and never repeat. The database unique
// constraint on reference_no is the backstop for the cross-process case.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewGenerator returns a Generator backed by monotonic crypto entropy.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Next returns a new reference number. Safe for concurrent use.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Prefix + ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}
