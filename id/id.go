// Package id issues the identifiers this bot attaches to things it
// creates: audit journal entries and simulated order fills. ULIDs rather
// than random UUIDs so journal rows sort by creation time on their
// primary key alone.
package id

import (
	cryptorand "crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu sync.Mutex
	// Monotonic over crypto/rand: unpredictable entropy, and ids minted
	// within the same millisecond still increase lexicographically.
	mono = ulid.Monotonic(cryptorand.Reader, 0)
)

// New returns the next ULID as its canonical 26-character string.
// Safe for concurrent use.
func New() string {
	mu.Lock()
	defer mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), mono).String()
}
