package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/autodns/autodns/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is overridden by goreleaser via -ldflags "-X main.version=...".
var version = "dev"

var cfgFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "autodns",
	Short: "Token-gated dynamic-DNS updater",
	Long: `autodns maps opaque bearer tokens to managed DNS hostnames and pushes
address updates to Cloudflare when a token holder's IP changes.

Run "autodns serve" to expose the HTTP update endpoint, or use the
generate/update/revoke/status commands for operator tasks.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default autodns.yaml in . or /etc/autodns)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(revokeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the autodns version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

// loadConfig reads the config file (if any) and environment into an explicit
// Config. All components receive this object; nothing reads viper after
// startup.
func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("autodns")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("/etc/autodns")
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("listen.host", "0.0.0.0")
	viper.SetDefault("listen.port", 8080)
	viper.SetDefault("store.backend", config.StoreFile)
	viper.SetDefault("store.path", "/config/mapping.json")
	viper.SetDefault("store.redis_addr", "")
	viper.SetDefault("store.redis_db", 0)
	viper.SetDefault("store.redis_key", "autodns:mapping")
	viper.SetDefault("rate_limit.window", "10m")
	viper.SetDefault("provider.timeout", "10s")
	viper.SetDefault("server.trust_proxy", false)
	viper.SetDefault("server.requests_per_second", 10)
	viper.SetDefault("server.cors_origins", []string{})
	viper.SetDefault("notifications.enabled", false)
	viper.SetDefault("notifications.urls", []string{})

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	window, err := time.ParseDuration(viper.GetString("rate_limit.window"))
	if err != nil {
		return config.Config{}, fmt.Errorf("parse rate_limit.window: %w", err)
	}
	providerTimeout, err := time.ParseDuration(viper.GetString("provider.timeout"))
	if err != nil {
		return config.Config{}, fmt.Errorf("parse provider.timeout: %w", err)
	}

	cfg := config.Config{
		ListenHost: viper.GetString("listen.host"),
		ListenPort: viper.GetInt("listen.port"),
		Cloudflare: config.CloudflareConfig{
			Zone:     viper.GetString("cloudflare.zone"),
			APIToken: viper.GetString("cloudflare.api_token"),
		},
		Store: config.StoreConfig{
			Backend:   viper.GetString("store.backend"),
			Path:      viper.GetString("store.path"),
			RedisAddr: viper.GetString("store.redis_addr"),
			RedisDB:   viper.GetInt("store.redis_db"),
			RedisKey:  viper.GetString("store.redis_key"),
		},
		RateLimitWindow:      window,
		ProviderTimeout:      providerTimeout,
		TrustProxyHeader:     viper.GetBool("server.trust_proxy"),
		RequestsPerSecond:    viper.GetInt("server.requests_per_second"),
		CORSOrigins:          viper.GetStringSlice("server.cors_origins"),
		NotificationsEnabled: viper.GetBool("notifications.enabled"),
		NotificationURLs:     viper.GetStringSlice("notifications.urls"),
	}
	return cfg, nil
}

// newLogger builds the process logger.
func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// newCLILogger keeps operator commands quiet: errors only, so stdout stays
// usable for command output.
func newCLILogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
