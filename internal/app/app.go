// Package app assembles a ledger, its store and a live session from a
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/waribei/unit-economics/internal/config"
	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/internal/session"
	"github.com/waribei/unit-economics/internal/store"
	"go.uber.org/zap"
)

// App owns the ledger, the store it is persisted to and the live session.
type App struct {
	Config  *config.Configuration
	Ledger  *ledger.Ledger
	Session *session.Session
	Store   store.Store

	logger *zap.Logger
}

// New builds an App over the store selected by the configuration.
func New(ctx context.Context, conf *config.Configuration, logger *zap.Logger) (*App, error) {
	st, err := store.New(logger, conf.Store)
	if err != nil {
		return nil, err
	}
	return NewWithStore(ctx, conf, st, logger)
}

// NewWithStore builds an App over st. A saved snapshot takes precedence over
// the seed history; with no snapshot the configured history is seeded once.
// The App takes ownership of st and closes it on failure.
func NewWithStore(ctx context.Context, conf *config.Configuration, st store.Store, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts, err := conf.LedgerOptions()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("invalid preset table: %w", err)
	}
	l := ledger.New(logger, opts)

	snap, err := st.Load(ctx)
	switch {
	case err == nil:
		if err := l.Restore(snap); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to restore saved scenarios: %w", err)
		}
		logger.Info("scenarios restored",
			zap.String("op", "app.New"),
			zap.Int("count", l.Len()),
		)
	case errors.Is(err, store.ErrNotFound):
		logger.Debug("no saved scenarios",
			zap.String("op", "app.New"),
		)
	default:
		st.Close()
		return nil, fmt.Errorf("failed to load saved scenarios: %w", err)
	}

	entries, err := conf.HistoryEntries()
	if err != nil {
		st.Close()
		return nil, err
	}
	if l.SeedHistory(entries) {
		logger.Info("history seeded",
			zap.String("op", "app.New"),
			zap.Int("entries", len(entries)),
		)
	}

	return &App{
		Config:  conf,
		Ledger:  l,
		Session: session.New(logger, l, conf.SessionOptions()),
		Store:   st,
		logger:  logger,
	}, nil
}

// Persist writes the current ledger snapshot to the store.
func (a *App) Persist(ctx context.Context) error {
	if err := a.Store.Save(ctx, a.Ledger.Snapshot()); err != nil {
		a.logger.Error("failed to persist scenarios",
			zap.String("op", "app.Persist"),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
