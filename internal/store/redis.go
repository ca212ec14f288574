package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// RedisStore keeps the whole mapping as one JSON value under a single key.
// It preserves the load-whole/save-whole semantics of FileStore while moving
// durability to a Redis server.
type RedisStore struct {
	client rueidis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to the Redis server at addr and stores the mapping
// under key.
func NewRedisStore(addr string, db int, key string, logger *zap.Logger) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
		SelectDB:    db,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}
	return &RedisStore{client: client, key: key, logger: logger}, nil
}

// Load fetches and decodes the mapping. A missing key is the normal
// first-run state and yields an empty mapping.
func (s *RedisStore) Load(ctx context.Context) (Mapping, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(s.key).Build())
	b, err := resp.AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return Mapping{}, nil
		}
		return nil, fmt.Errorf("get mapping key %s: %w", s.key, err)
	}

	var m Mapping
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode mapping key %s: %w: %v", s.key, ErrCorruptStore, err)
	}
	if m == nil {
		m = Mapping{}
	}
	return m, nil
}

// Save replaces the stored mapping with m.
func (s *RedisStore) Save(ctx context.Context, m Mapping) error {
	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if err := s.client.Do(ctx, s.client.B().Set().Key(s.key).Value(string(b)).Build()).Error(); err != nil {
		return fmt.Errorf("set mapping key %s: %w", s.key, err)
	}
	s.logger.Debug("mapping saved", zap.String("key", s.key), zap.Int("entries", len(m)))
	return nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() {
	s.client.Close()
}
