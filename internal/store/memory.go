package store

import (
	"context"
	"sync"

	"github.com/waribei/unit-economics/internal/ledger"
)

// MemoryStore is an in-memory implementation of Store.
type MemoryStore struct {
	mu   sync.Mutex
	snap *ledger.Snapshot
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save stores a copy of the snapshot in memory.
func (m *MemoryStore) Save(_ context.Context, snap ledger.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := copySnapshot(snap)
	m.snap = &c
	return nil
}

// Load returns the last saved snapshot.
func (m *MemoryStore) Load(_ context.Context) (ledger.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap == nil {
		return ledger.Snapshot{}, ErrNotFound
	}
	return copySnapshot(*m.snap), nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}

func copySnapshot(snap ledger.Snapshot) ledger.Snapshot {
	out := ledger.Snapshot{
		Scenarios: make([]map[string]interface{}, 0, len(snap.Scenarios)),
		Seeded:    snap.Seeded,
	}
	for _, record := range snap.Scenarios {
		out.Scenarios = append(out.Scenarios, copyRecord(record))
	}
	if snap.Baseline != nil {
		out.Baseline = copyRecord(snap.Baseline)
	}
	return out
}

func copyRecord(record map[string]interface{}) map[string]interface{} {
	c := make(map[string]interface{}, len(record))
	for k, v := range record {
		c[k] = v
	}
	return c
}
