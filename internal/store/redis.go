package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/waribei/unit-economics/internal/config"
	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/constants"
	"go.uber.org/zap"
)

// RedisStore keeps each scenario as a flat JSON object in a Redis list, in
// insertion order, with the baseline and seeded flag under sibling keys.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
}

// NewRedisStore creates a store backed by the Redis server in cfg.
func NewRedisStore(logger *zap.Logger, cfg config.StoreConfig) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := cfg.RedisAddr
	if addr == "" {
		addr = constants.DefaultRedisAddress
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = constants.DefaultRedisKeyPrefix
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.RedisDB,
	})
	return &RedisStore{client: rdb, logger: logger, prefix: prefix}
}

func (r *RedisStore) scenariosKey() string { return r.prefix + ":scenarios" }
func (r *RedisStore) baselineKey() string  { return r.prefix + ":baseline" }
func (r *RedisStore) seededKey() string    { return r.prefix + ":seeded" }

// Save replaces the stored snapshot atomically.
func (r *RedisStore) Save(ctx context.Context, snap ledger.Snapshot) error {
	records, baseline, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.scenariosKey(), r.baselineKey())
		if len(records) > 0 {
			values := make([]interface{}, len(records))
			for i, rec := range records {
				values[i] = rec
			}
			pipe.RPush(ctx, r.scenariosKey(), values...)
		}
		if baseline != "" {
			pipe.Set(ctx, r.baselineKey(), baseline, 0)
		}
		pipe.Set(ctx, r.seededKey(), snap.Seeded, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	r.logger.Debug("snapshot saved",
		zap.String("op", "store.RedisStore.Save"),
		zap.String("prefix", r.prefix),
		zap.Int("scenarios", len(records)),
	)
	return nil
}

// Load reads the stored snapshot. It returns ErrNotFound when nothing has
// been saved under the prefix.
func (r *RedisStore) Load(ctx context.Context) (ledger.Snapshot, error) {
	seeded, err := r.client.Get(ctx, r.seededKey()).Result()
	if errors.Is(err, redis.Nil) {
		return ledger.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	records, err := r.client.LRange(ctx, r.scenariosKey(), 0, -1).Result()
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to load scenarios: %w", err)
	}

	baseline, err := r.client.Get(ctx, r.baselineKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ledger.Snapshot{}, fmt.Errorf("failed to load baseline: %w", err)
	}

	return decodeSnapshot(records, baseline, seeded)
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func encodeSnapshot(snap ledger.Snapshot) ([]string, string, error) {
	records := make([]string, 0, len(snap.Scenarios))
	for _, record := range snap.Scenarios {
		b, err := json.Marshal(record)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode scenario: %w", err)
		}
		records = append(records, string(b))
	}

	var baseline string
	if snap.Baseline != nil {
		b, err := json.Marshal(snap.Baseline)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode baseline: %w", err)
		}
		baseline = string(b)
	}
	return records, baseline, nil
}

func decodeSnapshot(records []string, baseline string, seeded string) (ledger.Snapshot, error) {
	snap := ledger.Snapshot{
		Scenarios: make([]map[string]interface{}, 0, len(records)),
		Seeded:    seeded == "1" || seeded == "true",
	}
	for _, raw := range records {
		var record map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("failed to decode scenario: %w", err)
		}
		snap.Scenarios = append(snap.Scenarios, record)
	}
	if baseline != "" {
		var record map[string]interface{}
		if err := json.Unmarshal([]byte(baseline), &record); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("failed to decode baseline: %w", err)
		}
		snap.Baseline = record
	}
	return snap, nil
}
