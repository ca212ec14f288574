// Package provider abstracts the external DNS record service. The composite
// fetch-then-update sequence is two non-transactional network calls against a
// system outside our control; callers must not persist any local state until
// both calls have succeeded.
package provider

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned when the provider has no A record for the
// requested hostname.
var ErrRecordNotFound = errors.New("dns record not found")

// ErrProvider wraps any other provider failure: unreachable API, non-2xx
// response, or timeout.
var ErrProvider = errors.New("dns provider error")

// RecordService exposes the two provider operations the updater needs.
type RecordService interface {
	// FindRecordID resolves the provider-side identifier of the A record
	// for hostname. Returns ErrRecordNotFound when no record exists.
	FindRecordID(ctx context.Context, hostname string) (string, error)

	// UpdateRecord points the identified A record at ip.
	UpdateRecord(ctx context.Context, recordID, hostname, ip string) error
}
