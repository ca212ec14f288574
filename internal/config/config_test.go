package config_test

import (
	"testing"
	"time"

	"github.com/autodns/autodns/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Cloudflare: config.CloudflareConfig{
			Zone:     "example.com",
			APIToken: "cf-token",
		},
		Store: config.StoreConfig{
			Backend: config.StoreFile,
			Path:    "/config/mapping.json",
		},
		RateLimitWindow: 10 * time.Minute,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	redis := validConfig()
	redis.Store = config.StoreConfig{Backend: config.StoreRedis, RedisAddr: "localhost:6379"}
	if err := redis.Validate(); err != nil {
		t.Fatalf("Validate redis backend: %v", err)
	}
}

func TestValidateFatalCases(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing zone", func(c *config.Config) { c.Cloudflare.Zone = "" }},
		{"missing api token", func(c *config.Config) { c.Cloudflare.APIToken = "" }},
		{"zero window", func(c *config.Config) { c.RateLimitWindow = 0 }},
		{"negative window", func(c *config.Config) { c.RateLimitWindow = -time.Minute }},
		{"file backend without path", func(c *config.Config) { c.Store.Path = "" }},
		{"redis backend without addr", func(c *config.Config) {
			c.Store = config.StoreConfig{Backend: config.StoreRedis}
		}},
		{"unknown backend", func(c *config.Config) { c.Store.Backend = "etcd" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate accepted an invalid configuration")
			}
		})
	}
}
