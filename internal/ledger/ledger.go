// Package ledger owns the collection of saved scenarios, the baseline pointer
// and the date-keyed preset table.
//
// A Ledger is safe for concurrent use; every mutation is serialized because
// replace-on-date and baseline assignment both depend on the current
// collection.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
	"go.uber.org/zap"
)

// HistoryEntry is a historical scenario loaded once at startup.
// ComputeMetrics false stores the inputs with only the inline margin
// figures (total cost and contribution margin) filled in.
type HistoryEntry struct {
	Date           time.Time
	Name           string
	Assumptions    economics.Assumptions
	Volume         economics.Volume
	ComputeMetrics bool
}

// Snapshot is the durable form of a ledger.
type Snapshot struct {
	Scenarios []map[string]interface{} `json:"scenarios"`
	Baseline  map[string]interface{}   `json:"baseline,omitempty"`
	Seeded    bool                     `json:"seeded"`
}

// Options configures a Ledger.
type Options struct {
	// ReplaceOnDate keeps at most one scenario per calendar date; a save on
	// an occupied date replaces the existing record in place.
	ReplaceOnDate bool
	Presets       *PresetTable
	// NewID generates scenario IDs. Defaults to random UUIDs.
	NewID func() string
}

// Ledger is the ordered, mutable collection of scenarios.
type Ledger struct {
	mu            sync.RWMutex
	logger        *zap.Logger
	scenarios     []*Scenario
	baseline      *Scenario
	seeded        bool
	replaceOnDate bool
	presets       *PresetTable
	newID         func() string
}

// New creates an empty ledger.
func New(logger *zap.Logger, opts Options) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := opts.NewID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &Ledger{
		logger:        logger,
		replaceOnDate: opts.ReplaceOnDate,
		presets:       opts.Presets,
		newID:         newID,
	}
}

// Save computes the derived metrics for the given inputs, records a new
// scenario and returns it. The first scenario ever saved becomes the
// baseline.
func (l *Ledger) Save(date time.Time, name string, a economics.Assumptions, v economics.Volume) Scenario {
	s := &Scenario{
		ID:          l.newID(),
		Date:        datetime.Truncate(date),
		Name:        name,
		Assumptions: a,
		Volume:      v,
		Metrics:     economics.Compute(a, v),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	replaced := false
	if l.replaceOnDate {
		// The first record on the date is replaced in place, any others on
		// the same date are dropped.
		kept := make([]*Scenario, 0, len(l.scenarios))
		for _, existing := range l.scenarios {
			if !existing.Date.Equal(s.Date) {
				kept = append(kept, existing)
				continue
			}
			if !replaced {
				kept = append(kept, s)
				replaced = true
			}
		}
		l.scenarios = kept
	}
	if !replaced {
		l.scenarios = append(l.scenarios, s)
	}

	if l.baseline == nil {
		l.baseline = s
	}

	l.logger.Debug("scenario saved",
		zap.String("op", "ledger.Save"),
		zap.String("label", s.Label()),
		zap.Bool("replaced", replaced),
		zap.Float64("contributionMarginPct", s.Metrics.ContributionMarginPct),
	)

	return *s
}

// ListSorted returns all scenarios ordered by ascending date. Scenarios
// sharing a date keep their insertion order.
func (l *Ledger) ListSorted() []Scenario {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Scenario, len(l.scenarios))
	for i, s := range l.scenarios {
		out[i] = *s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// TimeSeries returns the sorted scenarios reduced to one point per date. The
// most recently inserted scenario of a date wins.
func (l *Ledger) TimeSeries() []Scenario {
	sorted := l.ListSorted()
	series := make([]Scenario, 0, len(sorted))
	for _, s := range sorted {
		if n := len(series); n > 0 && series[n-1].Date.Equal(s.Date) {
			series[n-1] = s
			continue
		}
		series = append(series, s)
	}
	return series
}

// Delete removes every scenario whose label is in labels and returns how
// many were removed. The baseline is left untouched even if its record is
// removed.
func (l *Ledger) Delete(labels []string) int {
	if len(labels) == 0 {
		return 0
	}
	selected := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		selected[label] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.scenarios[:0]
	removed := 0
	for _, s := range l.scenarios {
		if _, ok := selected[s.Label()]; ok {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	for i := len(kept); i < len(l.scenarios); i++ {
		l.scenarios[i] = nil
	}
	l.scenarios = kept

	l.logger.Debug("scenarios deleted",
		zap.String("op", "ledger.Delete"),
		zap.Int("requested", len(labels)),
		zap.Int("removed", removed),
	)

	return removed
}

// Baseline returns the first scenario ever saved.
func (l *Ledger) Baseline() (Scenario, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.baseline == nil {
		return Scenario{}, false
	}
	return *l.baseline, true
}

// LookupPreset returns the preset registered for the exact calendar date.
func (l *Ledger) LookupPreset(date time.Time) (Preset, bool) {
	return l.presets.Lookup(date)
}

// Presets returns every registered preset ordered by date.
func (l *Ledger) Presets() []Preset {
	return l.presets.All()
}

// SeedHistory appends historical scenarios directly, without touching the
// baseline. It runs at most once per ledger; later calls return false.
func (l *Ledger) SeedHistory(entries []HistoryEntry) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.seeded {
		return false
	}
	l.seeded = true

	for _, e := range entries {
		s := &Scenario{
			ID:          l.newID(),
			Date:        datetime.Truncate(e.Date),
			Name:        e.Name,
			Assumptions: e.Assumptions,
			Volume:      e.Volume,
		}
		if e.ComputeMetrics {
			s.Metrics = economics.Compute(e.Assumptions, e.Volume)
		} else {
			s.Metrics.TotalCostPct = e.Assumptions.TotalCostPct()
			s.Metrics.ContributionMarginPct = e.Assumptions.ContributionMarginPct()
		}
		l.scenarios = append(l.scenarios, s)
	}

	l.logger.Debug("history seeded",
		zap.String("op", "ledger.SeedHistory"),
		zap.Int("entries", len(entries)),
	)

	return true
}

// Seeded reports whether SeedHistory has run.
func (l *Ledger) Seeded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seeded
}

// Len returns the number of scenarios currently held.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.scenarios)
}

// Snapshot captures the ledger in insertion order as flat records.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := Snapshot{
		Scenarios: make([]map[string]interface{}, 0, len(l.scenarios)),
		Seeded:    l.seeded,
	}
	for _, s := range l.scenarios {
		snap.Scenarios = append(snap.Scenarios, s.ToMap())
	}
	if l.baseline != nil {
		snap.Baseline = l.baseline.ToMap()
	}
	return snap
}

// Restore replaces the ledger contents with a snapshot. The snapshot is
// decoded fully before anything is replaced.
func (l *Ledger) Restore(snap Snapshot) error {
	scenarios := make([]*Scenario, 0, len(snap.Scenarios))
	for _, record := range snap.Scenarios {
		s, err := ScenarioFromMap(record)
		if err != nil {
			return err
		}
		if s.ID == "" {
			s.ID = l.newID()
		}
		scenarios = append(scenarios, &s)
	}

	var baseline *Scenario
	if snap.Baseline != nil {
		b, err := ScenarioFromMap(snap.Baseline)
		if err != nil {
			return err
		}
		baseline = &b
		// Keep the pointer shared with the live record when it still exists.
		for _, s := range scenarios {
			if b.ID != "" && s.ID == b.ID {
				baseline = s
				break
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.scenarios = scenarios
	l.baseline = baseline
	l.seeded = snap.Seeded

	l.logger.Debug("ledger restored",
		zap.String("op", "ledger.Restore"),
		zap.Int("scenarios", len(scenarios)),
		zap.Bool("baseline", baseline != nil),
	)

	return nil
}
