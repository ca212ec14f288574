package gate_test

import (
	"testing"
	"time"

	"github.com/autodns/autodns/internal/gate"
	"github.com/autodns/autodns/internal/store"
)

const window = 10 * time.Minute

func mappingWith(token string, last *time.Time) store.Mapping {
	return store.Mapping{token: store.Entry{Hostname: "home.example.com", LastUpdated: last}}
}

func TestDecideUnknownToken(t *testing.T) {
	now := time.Now()
	for _, m := range []store.Mapping{{}, mappingWith("other", nil)} {
		d := gate.Decide(m, "missing", now, window)
		if d.Allowed {
			t.Fatalf("unknown token allowed: %+v", d)
		}
		if d.State != gate.StateUnknown {
			t.Fatalf("state = %q, want %q", d.State, gate.StateUnknown)
		}
	}
}

func TestDecideNeverUpdated(t *testing.T) {
	m := mappingWith("tok", nil)

	// Allowed at any instant, including the zero time.
	for _, now := range []time.Time{{}, time.Now(), time.Now().Add(100 * 365 * 24 * time.Hour)} {
		d := gate.Decide(m, "tok", now, window)
		if !d.Allowed || d.State != gate.StateNeverUpdated {
			t.Fatalf("never-updated token at %v: %+v", now, d)
		}
	}
}

func TestDecideWindowBoundary(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := mappingWith("tok", &last)

	cases := []struct {
		name    string
		now     time.Time
		allowed bool
		state   gate.State
	}{
		{"same instant", last, false, gate.StateCooling},
		{"inside window", last.Add(window / 2), false, gate.StateCooling},
		{"exactly at window", last.Add(window), false, gate.StateCooling},
		{"just past window", last.Add(window + time.Nanosecond), true, gate.StateReady},
		{"well past window", last.Add(24 * time.Hour), true, gate.StateReady},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := gate.Decide(m, "tok", tc.now, window)
			if d.Allowed != tc.allowed {
				t.Fatalf("allowed = %v, want %v", d.Allowed, tc.allowed)
			}
			if d.State != tc.state {
				t.Fatalf("state = %q, want %q", d.State, tc.state)
			}
		})
	}
}

func TestDecideRetryAfter(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := mappingWith("tok", &last)

	d := gate.Decide(m, "tok", last.Add(3*time.Minute), window)
	if d.Allowed {
		t.Fatalf("expected deny inside window: %+v", d)
	}
	if d.RetryAfter != 7*time.Minute {
		t.Fatalf("RetryAfter = %v, want 7m", d.RetryAfter)
	}

	d = gate.Decide(m, "tok", last.Add(window+time.Second), window)
	if d.RetryAfter != 0 {
		t.Fatalf("RetryAfter after window = %v, want 0", d.RetryAfter)
	}
}

func TestDecideDoesNotMutate(t *testing.T) {
	last := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := mappingWith("tok", &last)

	gate.Decide(m, "tok", last.Add(time.Hour), window)
	gate.Decide(m, "missing", last.Add(time.Hour), window)

	entry := m["tok"]
	if len(m) != 1 || entry.LastUpdated == nil || !entry.LastUpdated.Equal(last) {
		t.Fatalf("mapping mutated by Decide: %+v", m)
	}
}
