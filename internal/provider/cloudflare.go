package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"go.uber.org/zap"
)

// Cloudflare implements RecordService against the Cloudflare v4 API.
type Cloudflare struct {
	api     *cloudflare.API
	zone    *cloudflare.ResourceContainer
	timeout time.Duration
	logger  *zap.Logger
}

// NewCloudflare authenticates with apiToken and resolves the zone ID for
// zoneName. timeout bounds every individual API call.
func NewCloudflare(apiToken, zoneName string, timeout time.Duration, logger *zap.Logger) (*Cloudflare, error) {
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("cloudflare client: %w", err)
	}

	zoneID, err := api.ZoneIDByName(zoneName)
	if err != nil {
		return nil, fmt.Errorf("resolve zone %s: %w", zoneName, err)
	}

	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Cloudflare{
		api:     api,
		zone:    cloudflare.ZoneIdentifier(zoneID),
		timeout: timeout,
		logger:  logger,
	}, nil
}

// FindRecordID looks up the A record for hostname in the configured zone.
func (c *Cloudflare) FindRecordID(ctx context.Context, hostname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	records, _, err := c.api.ListDNSRecords(ctx, c.zone, cloudflare.ListDNSRecordsParams{
		Type: "A",
		Name: hostname,
	})
	if err != nil {
		return "", fmt.Errorf("%w: list records for %s: %v", ErrProvider, hostname, err)
	}
	if len(records) == 0 {
		return "", fmt.Errorf("%w: no A record for %s", ErrRecordNotFound, hostname)
	}
	return records[0].ID, nil
}

// UpdateRecord points the A record at ip. TTL 1 means "automatic" on
// Cloudflare, matching typical dynamic-DNS records.
func (c *Cloudflare) UpdateRecord(ctx context.Context, recordID, hostname, ip string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.api.UpdateDNSRecord(ctx, c.zone, cloudflare.UpdateDNSRecordParams{
		ID:      recordID,
		Type:    "A",
		Name:    hostname,
		Content: ip,
		TTL:     1,
	})
	if err != nil {
		return fmt.Errorf("%w: update record %s (%s): %v", ErrProvider, recordID, hostname, err)
	}

	c.logger.Info("dns record updated",
		zap.String("hostname", hostname),
		zap.String("record_id", recordID),
		zap.String("ip", ip),
	)
	return nil
}
