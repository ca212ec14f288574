package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/autodns/autodns/internal/ddns"
	"github.com/autodns/autodns/internal/provider"
	"github.com/spf13/cobra"
)

// withService loads configuration, wires a Service, and hands it to fn.
// Operator commands log to stderr at error level only, keeping stdout clean
// for the command's own output.
func withService(needProvider bool, fn func(ctx context.Context, svc *ddns.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newCLILogger()
	defer logger.Sync() //nolint:errcheck

	st, closeStore, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var records provider.RecordService
	if needProvider {
		records, err = provider.NewCloudflare(cfg.Cloudflare.APIToken, cfg.Cloudflare.Zone, cfg.ProviderTimeout, logger)
		if err != nil {
			return fmt.Errorf("cloudflare setup: %w", err)
		}
	}

	svc := ddns.NewService(st, records, buildNotifier(cfg, logger), cfg.RateLimitWindow, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return fn(ctx, svc)
}

var generateCmd = &cobra.Command{
	Use:   "generate <hostname>",
	Short: "Issue a new update token for a hostname",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(false, func(ctx context.Context, svc *ddns.Service) error {
			token, err := svc.Issue(ctx, args[0])
			if err != nil {
				if errors.Is(err, ddns.ErrDuplicateHostname) {
					fmt.Fprintf(os.Stderr, "%s already has a token assigned.\n", args[0])
					return err
				}
				return err
			}
			fmt.Printf("Generated token for %s: %s\n", args[0], token)
			return nil
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <hostname> <ip>",
	Short: "Force a DNS update for a hostname, bypassing IP auto-detection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(true, func(ctx context.Context, svc *ddns.Service) error {
			res, err := svc.ForceUpdate(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("DNS record for %s updated to %s.\n", res.Hostname, res.IP)
			return nil
		})
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <hostname>",
	Short: "Delete the token mapping for a hostname",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(false, func(ctx context.Context, svc *ddns.Service) error {
			if err := svc.Revoke(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Token for %s revoked.\n", args[0])
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Dump the mapping store as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(false, func(ctx context.Context, svc *ddns.Service) error {
			m, err := svc.Status(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		})
	},
}
