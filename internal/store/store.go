package store

import (
	"context"
	"errors"
	"time"
)

// ErrCorruptStore is returned when the persisted mapping exists but cannot
// be decoded. Callers must treat this as a fatal configuration error rather
// than an empty store: an empty result would silently revoke every issued
// token.
var ErrCorruptStore = errors.New("mapping store is corrupt")

// Entry is one issued token's record: the hostname it is authorized to
// update and the time of the last successfully applied DNS update.
// LastUpdated is nil until the first successful update.
type Entry struct {
	Hostname    string     `json:"hostname"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Mapping is the full token → entry table. It is always loaded and saved as
// a whole; the persisted copy is the single source of truth.
type Mapping map[string]Entry

// Store persists the mapping. Load returns an empty (non-nil) Mapping when
// the backing resource does not exist yet, and ErrCorruptStore when it
// exists but cannot be decoded. Save fully replaces the prior contents.
type Store interface {
	Load(ctx context.Context) (Mapping, error)
	Save(ctx context.Context, m Mapping) error
}

// HostnameTaken reports whether any entry already maps to hostname.
func (m Mapping) HostnameTaken(hostname string) bool {
	for _, e := range m {
		if e.Hostname == hostname {
			return true
		}
	}
	return false
}

// TokenForHostname returns the token whose entry maps to hostname.
func (m Mapping) TokenForHostname(hostname string) (string, bool) {
	for token, e := range m {
		if e.Hostname == hostname {
			return token, true
		}
	}
	return "", false
}

// Clone returns a deep copy, so a caller can mutate a candidate mapping
// without touching the one handed out by Load.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for token, e := range m {
		if e.LastUpdated != nil {
			t := *e.LastUpdated
			e.LastUpdated = &t
		}
		out[token] = e
	}
	return out
}
