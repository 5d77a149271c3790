// Package store keeps ledger snapshots between process runs.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/waribei/unit-economics/internal/config"
	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/constants"
	"go.uber.org/zap"
)

// ErrNotFound is returned by Load when nothing has been saved yet.
var ErrNotFound = errors.New("snapshot not found")

// Store persists ledger snapshots.
type Store interface {
	Save(ctx context.Context, snap ledger.Snapshot) error
	Load(ctx context.Context) (ledger.Snapshot, error)
	Close() error
}

// New builds the store selected by cfg.
func New(logger *zap.Logger, cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", constants.StoreBackendMemory:
		return NewMemoryStore(), nil
	case constants.StoreBackendRedis:
		return NewRedisStore(logger, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}
