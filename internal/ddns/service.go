// Package ddns orchestrates dynamic-DNS update attempts: it loads the
// mapping, consults the gate, drives the provider's fetch-then-update
// sequence, and commits the rate-limit timestamp only after the provider has
// confirmed the change.
package ddns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/autodns/autodns/internal/gate"
	"github.com/autodns/autodns/internal/notify"
	"github.com/autodns/autodns/internal/provider"
	"github.com/autodns/autodns/internal/store"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

// nowFn supplies the current time. In production this is time.Now; in tests
// it can be stubbed.
type nowFn func() time.Time

// Service is the update-authorization and orchestration layer. A single
// process-wide mutex serializes every load-decide-commit sequence: the
// store's whole-file write cycle is not safe under concurrent writers, so
// two racing updates must never interleave between Load and Save.
type Service struct {
	mu       sync.Mutex
	store    store.Store
	records  provider.RecordService
	notifier notify.Notifier
	window   time.Duration
	now      nowFn
	logger   *zap.Logger
}

// NewService wires the orchestration layer. Pass nil for now to use
// time.Now.
func NewService(st store.Store, records provider.RecordService, notifier notify.Notifier, window time.Duration, now nowFn, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:    st,
		records:  records,
		notifier: notifier,
		window:   window,
		now:      now,
		logger:   logger,
	}
}

// UpdateResult reports a successfully applied update.
type UpdateResult struct {
	Hostname string
	IP       string
}

// Update applies a token-authorized update to ip. The gate decision is made
// against the freshly loaded mapping; the timestamp is committed strictly
// after the provider confirms the record change, so a failed provider call
// never burns the rate-limit window. The commit and notification survive a
// client abort: side effects already applied to the provider cannot be
// rolled back.
func (s *Service) Update(ctx context.Context, token, ip string) (*UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	d := gate.Decide(m, token, s.now(), s.window)
	switch d.State {
	case gate.StateUnknown:
		return nil, ErrUnknownToken
	case gate.StateCooling:
		return nil, &RateLimitedError{RetryAfter: d.RetryAfter}
	}

	entry := m[token]
	if err := s.applyUpdate(ctx, entry.Hostname, ip); err != nil {
		return nil, err
	}

	now := s.now()
	entry.LastUpdated = &now
	m[token] = entry

	// The DNS record is already changed; committing must not be cancelled
	// along with the originating request.
	if err := s.store.Save(context.WithoutCancel(ctx), m); err != nil {
		return nil, fmt.Errorf("commit update timestamp: %w", err)
	}

	s.logger.Info("update applied",
		zap.String("hostname", entry.Hostname),
		zap.String("ip", ip),
	)
	s.notifyAsync(fmt.Sprintf("DNS record for %s updated to %s.", entry.Hostname, ip))

	return &UpdateResult{Hostname: entry.Hostname, IP: ip}, nil
}

// ForceUpdate is the operator path behind the CLI's update command: it
// addresses the entry by hostname and bypasses the gate, but still commits
// the timestamp only after provider success.
func (s *Service) ForceUpdate(ctx context.Context, hostname, ip string) (*UpdateResult, error) {
	hostname, err := normalizeHostname(hostname)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}

	token, ok := m.TokenForHostname(hostname)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostnameNotFound, hostname)
	}

	if err := s.applyUpdate(ctx, hostname, ip); err != nil {
		return nil, err
	}

	entry := m[token]
	now := s.now()
	entry.LastUpdated = &now
	m[token] = entry

	if err := s.store.Save(context.WithoutCancel(ctx), m); err != nil {
		return nil, fmt.Errorf("commit update timestamp: %w", err)
	}

	s.logger.Info("forced update applied", zap.String("hostname", hostname), zap.String("ip", ip))
	s.notifyAsync(fmt.Sprintf("DNS record for %s updated to %s.", hostname, ip))

	return &UpdateResult{Hostname: hostname, IP: ip}, nil
}

// applyUpdate runs the provider's read-then-write sequence. The two calls
// are not transactional; nothing is persisted locally unless both succeed.
func (s *Service) applyUpdate(ctx context.Context, hostname, ip string) error {
	recordID, err := s.records.FindRecordID(ctx, hostname)
	if err != nil {
		return err
	}
	return s.records.UpdateRecord(ctx, recordID, hostname, ip)
}

// Issue registers hostname and returns its new bearer token. The hostname
// must not already have one; token uniqueness is verified against the
// freshly loaded mapping rather than assumed from randomness.
func (s *Service) Issue(ctx context.Context, hostname string) (string, error) {
	hostname, err := normalizeHostname(hostname)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load mapping: %w", err)
	}

	if m.HostnameTaken(hostname) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateHostname, hostname)
	}

	var token string
	for {
		token, err = newToken()
		if err != nil {
			return "", fmt.Errorf("generate token: %w", err)
		}
		if _, exists := m[token]; !exists {
			break
		}
	}

	m[token] = store.Entry{Hostname: hostname}
	if err := s.store.Save(ctx, m); err != nil {
		return "", fmt.Errorf("persist new token: %w", err)
	}

	s.logger.Info("token issued", zap.String("hostname", hostname))
	s.notifyAsync(fmt.Sprintf("Generated new token for %s.", hostname))

	return token, nil
}

// Revoke deletes the entry for hostname. Entries are never removed
// automatically; this is an explicit operator action.
func (s *Service) Revoke(ctx context.Context, hostname string) error {
	hostname, err := normalizeHostname(hostname)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load mapping: %w", err)
	}

	token, ok := m.TokenForHostname(hostname)
	if !ok {
		return fmt.Errorf("%w: %s", ErrHostnameNotFound, hostname)
	}

	delete(m, token)
	if err := s.store.Save(ctx, m); err != nil {
		return fmt.Errorf("persist revocation: %w", err)
	}

	s.logger.Info("token revoked", zap.String("hostname", hostname))
	return nil
}

// Status returns a copy of the current mapping for operator inspection.
func (s *Service) Status(ctx context.Context) (store.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mapping: %w", err)
	}
	return m.Clone(), nil
}

// notifyAsync fires the notification without making the caller wait on it.
// Failures are the notifier's to log; they never reach the update path.
func (s *Service) notifyAsync(message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, message)
	}()
}

// normalizeHostname lowercases and converts hostname to its ASCII (punycode)
// form so the same name cannot be registered twice under different spellings.
func normalizeHostname(hostname string) (string, error) {
	hostname = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(hostname)), ".")
	if hostname == "" {
		return "", errors.New("hostname must not be empty")
	}
	ascii, err := idna.ToASCII(hostname)
	if err != nil {
		return "", fmt.Errorf("invalid hostname %q: %w", hostname, err)
	}
	return ascii, nil
}
