// Package clock isolates wall-clock reads and id generation behind small
// interfaces so the engines built on top of it stay deterministic in tests.
package clock

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Clock provides the current time. Production code uses Real; tests use a
// fixed or stepped implementation so ranking and decay math never race
// against a live clock.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces opaque, unique identifiers for memories, audit
// records, and learning sessions.
type IDGenerator interface {
	NewID() string
}

// Real is the production Clock, backed by time.Now.
type Real struct{}

// Now returns the current wall-clock time.
func (Real) Now() time.Time { return time.Now() }

// UUIDGenerator is the production IDGenerator, backed by google/uuid.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string { return uuid.NewString() }

// Fixed is a Clock that always returns the same instant. Useful for
// determinism tests (spec §8.7, §8.13) where ranking math must not observe
// wall-clock drift between calls.
type Fixed struct {
	At time.Time
}

// Now returns the fixed instant.
func (f Fixed) Now() time.Time { return f.At }

// Sequential is an IDGenerator that returns ids from a fixed prefix plus an
// incrementing counter, for tests that need predictable ids.
type Sequential struct {
	Prefix  string
	counter int
}

// NewID returns the next sequential id.
func (s *Sequential) NewID() string {
	s.counter++
	return s.Prefix + "-" + strconv.Itoa(s.counter)
}
