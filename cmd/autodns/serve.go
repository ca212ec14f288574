package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/autodns/autodns/internal/config"
	"github.com/autodns/autodns/internal/ddns"
	"github.com/autodns/autodns/internal/notify"
	"github.com/autodns/autodns/internal/provider"
	"github.com/autodns/autodns/internal/server"
	"github.com/autodns/autodns/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dynamic-DNS update HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		if err := runServe(logger); err != nil {
			logger.Error("server exited with error", zap.Error(err))
			return err
		}
		return nil
	},
}

func runServe(logger *zap.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	st, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Refuse to start on a corrupt store rather than serving requests that
	// would treat every token as unknown.
	if _, err := st.Load(context.Background()); err != nil {
		return fmt.Errorf("mapping store check: %w", err)
	}

	records, err := provider.NewCloudflare(cfg.Cloudflare.APIToken, cfg.Cloudflare.Zone, cfg.ProviderTimeout, logger)
	if err != nil {
		return fmt.Errorf("cloudflare setup: %w", err)
	}
	logger.Info("cloudflare zone resolved", zap.String("zone", cfg.Cloudflare.Zone))

	svc := ddns.NewService(st, records, buildNotifier(cfg, logger), cfg.RateLimitWindow, nil, logger)
	handler := server.NewUpdateHandler(svc, cfg.TrustProxyHeader, logger)
	router := server.NewRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ListenHost, cfg.ListenPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("autodns HTTP listening",
			zap.String("host", cfg.ListenHost),
			zap.Int("port", cfg.ListenPort),
			zap.Duration("rate_limit_window", cfg.RateLimitWindow),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP listen error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP shutdown error", zap.Error(err))
	}

	logger.Info("autodns stopped")
	return nil
}

// buildStore selects the mapping store backend from configuration.
func buildStore(cfg config.Config, logger *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreRedis:
		rs, err := store.NewRedisStore(cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.RedisKey, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("redis store: %w", err)
		}
		logger.Info("mapping store: redis", zap.String("addr", cfg.Store.RedisAddr))
		return rs, rs.Close, nil
	default:
		logger.Info("mapping store: file", zap.String("path", cfg.Store.Path))
		return store.NewFileStore(cfg.Store.Path, logger), func() {}, nil
	}
}

// buildNotifier selects the notifier: webhook delivery when enabled and
// configured, otherwise a logging noop.
func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Notifier {
	if cfg.NotificationsEnabled && len(cfg.NotificationURLs) > 0 {
		logger.Info("notifications enabled", zap.Int("channels", len(cfg.NotificationURLs)))
		return notify.NewWebhookNotifier(cfg.NotificationURLs, 5*time.Second, logger)
	}
	logger.Info("notifications disabled")
	return notify.NewNoopNotifier(logger)
}
