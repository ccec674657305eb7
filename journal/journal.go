// Package journal is a write-only audit record of handled commands. The
// relay never reads it back; it exists so an operator can reconstruct what
// the bot did and why.
package journal

import "time"

type Entry struct {
	ID       string
	Time     time.Time
	Identity string
	Command  string // "start", "balance" or "signal"
	Text     string // the inbound message body
	Outcome  string // "ok" or the failure kind
	Detail   string // confirmation summary or failure description
}

type Journal interface {
	Record(Entry) error
	Close() error
}

// Nop discards every entry; used when auditing is not configured.
type Nop struct{}

func (Nop) Record(Entry) error { return nil }
func (Nop) Close() error       { return nil }
