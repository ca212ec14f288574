// Package gate implements the update-authorization decision for dynamic-DNS
// update attempts. Decide is a pure function over (mapping, token, now): it
// performs no I/O and never mutates the mapping. Committing the timestamp
// after a successful DNS update is the caller's job, and must happen only
// once the provider has confirmed the change.
package gate

import (
	"time"

	"github.com/autodns/autodns/internal/store"
)

// State classifies a token at the moment of an update attempt.
type State string

const (
	// StateUnknown means the token is not in the mapping at all.
	StateUnknown State = "unknown"
	// StateNeverUpdated means the token exists but has never completed an update.
	StateNeverUpdated State = "never-updated"
	// StateCooling means the last successful update is still within the window.
	StateCooling State = "cooling"
	// StateReady means the window has fully elapsed since the last update.
	StateReady State = "ready"
)

// Decision is the outcome of an update attempt for one token.
type Decision struct {
	Allowed bool
	State   State
	// RetryAfter is how long until the token leaves StateCooling.
	// Zero unless State is StateCooling.
	RetryAfter time.Duration
}

// Decide returns the update decision for token at instant now. An update is
// denied while now-lastUpdated <= window; the boundary instant itself is
// still denied, so the first allowed instant is strictly after the window.
func Decide(m store.Mapping, token string, now time.Time, window time.Duration) Decision {
	entry, ok := m[token]
	if !ok {
		return Decision{Allowed: false, State: StateUnknown}
	}
	if entry.LastUpdated == nil {
		return Decision{Allowed: true, State: StateNeverUpdated}
	}

	elapsed := now.Sub(*entry.LastUpdated)
	if elapsed <= window {
		return Decision{
			Allowed:    false,
			State:      StateCooling,
			RetryAfter: window - elapsed,
		}
	}
	return Decision{Allowed: true, State: StateReady}
}
