package auth

import "strings"

// Allowlist is the static set of identities permitted to issue trading
// commands. It is built once at startup and never mutated.
//
// An empty configured list puts the gate in bypass mode: every identity is
// authorized. That mirrors running without ALLOWED_USERS set and is an
// explicit deployment choice, not an accident.
type Allowlist struct {
	ids map[string]struct{}
}

// New builds an Allowlist from a comma-separated list of identities.
// Whitespace around entries is ignored; an empty string yields an open
// gate.
func New(csv string) *Allowlist {
	a := &Allowlist{ids: make(map[string]struct{})}
	for _, id := range strings.Split(csv, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			a.ids[id] = struct{}{}
		}
	}
	return a
}

// Open reports whether the gate is in allow-all bypass mode.
func (a *Allowlist) Open() bool {
	return len(a.ids) == 0
}

// Authorized reports whether identity may issue commands. Pure predicate,
// no side effects.
func (a *Allowlist) Authorized(identity string) bool {
	if a.Open() {
		return true
	}
	_, ok := a.ids[identity]
	return ok
}
