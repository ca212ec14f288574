// Package config defines the explicit configuration object constructed once
// at startup and passed into every component. There is no package-level
// mutable state anywhere in this repository.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Store backends.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

// Config holds everything the updater needs to run.
type Config struct {
	ListenHost string
	ListenPort int

	Cloudflare CloudflareConfig
	Store      StoreConfig

	// RateLimitWindow is the minimum duration between two successful
	// updates for the same token.
	RateLimitWindow time.Duration
	// ProviderTimeout bounds each individual DNS provider API call.
	ProviderTimeout time.Duration

	// TrustProxyHeader enables client-IP resolution from the first entry
	// of X-Forwarded-For. Only set this behind a trusted reverse proxy.
	TrustProxyHeader bool

	// RequestsPerSecond is the per-IP HTTP rate limit; zero disables it.
	RequestsPerSecond int

	CORSOrigins []string

	NotificationsEnabled bool
	NotificationURLs     []string
}

// CloudflareConfig identifies the managed zone and authenticates to the API.
type CloudflareConfig struct {
	Zone     string
	APIToken string
}

// StoreConfig selects and parameterizes the mapping store backend.
type StoreConfig struct {
	Backend string // StoreFile or StoreRedis

	// File backend.
	Path string

	// Redis backend.
	RedisAddr string
	RedisDB   int
	RedisKey  string
}

// Validate reports fatal configuration errors. The process must refuse to
// start when it returns non-nil.
func (c Config) Validate() error {
	if c.Cloudflare.Zone == "" {
		return errors.New("cloudflare.zone is required")
	}
	if c.Cloudflare.APIToken == "" {
		return errors.New("cloudflare.api_token is required")
	}
	if c.RateLimitWindow <= 0 {
		return errors.New("rate_limit.window must be positive")
	}

	switch c.Store.Backend {
	case StoreFile:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the file backend")
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return errors.New("store.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}

	return nil
}
