// Package session holds the live inputs of one user session and exposes one
// command handler per user action. Handlers mutate the live inputs and the
// ledger explicitly; nothing is re-applied implicitly.
package session

import (
	"sync"
	"time"

	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
	"go.uber.org/zap"
)

// PresetState is the state of the preset application sub-machine.
type PresetState int

const (
	// NoPresetLoaded means no preset has been applied in this session.
	NoPresetLoaded PresetState = iota
	// PresetLoaded means the preset of LastPresetDate was the last one applied.
	PresetLoaded
)

func (s PresetState) String() string {
	switch s {
	case PresetLoaded:
		return "PresetLoaded"
	default:
		return "NoPresetLoaded"
	}
}

// QuickScenario is a named assumption set loadable in one action.
type QuickScenario struct {
	Name        string                `json:"name"`
	Assumptions economics.Assumptions `json:"assumptions"`
}

// Options configures a new Session.
type Options struct {
	Assumptions    economics.Assumptions
	Volume         economics.Volume
	Name           string
	Date           time.Time
	QuickScenarios []QuickScenario
}

// State is a read-only view of the live session.
type State struct {
	Date           time.Time             `json:"date"`
	Name           string                `json:"name"`
	Assumptions    economics.Assumptions `json:"assumptions"`
	Volume         economics.Volume      `json:"volume"`
	Metrics        economics.Metrics     `json:"metrics"`
	PresetState    string                `json:"presetState"`
	LastPresetDate *time.Time            `json:"lastPresetDate,omitempty"`
}

// Session is the live, editable side of the calculator.
type Session struct {
	mu     sync.Mutex
	logger *zap.Logger
	ledger *ledger.Ledger

	assumptions economics.Assumptions
	volume      economics.Volume
	date        time.Time
	name        string

	quick          []QuickScenario
	presetState    PresetState
	lastPresetDate time.Time
}

// New creates a session over l. Defaulting of the live inputs is the
// caller's responsibility; Options are taken as given, except that a zero
// Date becomes today and an empty Name becomes the default label.
func New(logger *zap.Logger, l *ledger.Ledger, opts Options) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	name := opts.Name
	if name == "" {
		name = constants.DefaultScenarioName
	}
	return &Session{
		logger:      logger,
		ledger:      l,
		assumptions: opts.Assumptions,
		volume:      opts.Volume,
		date:        datetime.Truncate(date),
		name:        name,
		quick:       append([]QuickScenario(nil), opts.QuickScenarios...),
	}
}

// Ledger returns the ledger the session saves into.
func (s *Session) Ledger() *ledger.Ledger {
	return s.ledger
}

// State returns the live inputs, their metrics and the preset state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Date:        s.date,
		Name:        s.name,
		Assumptions: s.assumptions,
		Volume:      s.volume,
		Metrics:     economics.Compute(s.assumptions, s.volume),
		PresetState: s.presetState.String(),
	}
	if s.presetState == PresetLoaded {
		d := s.lastPresetDate
		st.LastPresetDate = &d
	}
	return st
}

// PresetState returns the preset sub-machine state and, when a preset is
// loaded, its date.
func (s *Session) PresetState() (PresetState, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presetState, s.lastPresetDate
}

// Metrics computes the metrics of the live inputs.
func (s *Session) Metrics() economics.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return economics.Compute(s.assumptions, s.volume)
}

// SetAssumptions replaces the live rates, as when the user edits inputs.
func (s *Session) SetAssumptions(a economics.Assumptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assumptions = a
}

// SetVolume replaces the live volume assumptions.
func (s *Session) SetVolume(v economics.Volume) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

// SetName sets the label used by the next save.
func (s *Session) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// SelectDate sets the live date and applies its preset without forcing.
// It reports whether a preset was applied.
func (s *Session) SelectDate(date time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.date = datetime.Truncate(date)
	return s.applyPresetLocked(s.date, false)
}

// SelectToday selects the calendar date of now.
func (s *Session) SelectToday(now time.Time) bool {
	return s.SelectDate(now)
}

// ApplyPreset loads the preset registered for date into the live inputs.
// Without force, re-selecting the date of the preset already loaded is a
// no-op so that edits made since are kept. Dates without a preset leave
// both the inputs and the state untouched. It reports whether the live
// inputs were overwritten.
func (s *Session) ApplyPreset(date time.Time, force bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyPresetLocked(datetime.Truncate(date), force)
}

func (s *Session) applyPresetLocked(date time.Time, force bool) bool {
	preset, ok := s.ledger.LookupPreset(date)
	if !ok {
		return false
	}
	if !force && s.presetState == PresetLoaded && s.lastPresetDate.Equal(date) {
		s.logger.Debug("preset already loaded, keeping edited inputs",
			zap.String("op", "session.ApplyPreset"),
			zap.String("date", datetime.Format(date)),
		)
		return false
	}

	from := s.presetState
	s.assumptions = preset.Assumptions
	if preset.Volume != nil {
		s.volume = *preset.Volume
	}
	s.presetState = PresetLoaded
	s.lastPresetDate = date

	s.logger.Debug("preset applied",
		zap.String("op", "session.ApplyPreset"),
		zap.String("date", datetime.Format(date)),
		zap.String("preset", preset.Name),
		zap.String("from", from.String()),
		zap.Bool("force", force),
	)
	return true
}

// QuickScenarios returns the configured quick scenarios.
func (s *Session) QuickScenarios() []QuickScenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]QuickScenario(nil), s.quick...)
}

// SelectQuickScenario loads the named quick scenario's rates into the live
// inputs and its name into the label. Unknown names are a no-op.
func (s *Session) SelectQuickScenario(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range s.quick {
		if q.Name == name {
			s.assumptions = q.Assumptions
			s.name = q.Name
			s.logger.Debug("quick scenario selected",
				zap.String("op", "session.SelectQuickScenario"),
				zap.String("name", name),
			)
			return true
		}
	}
	return false
}

// Save records the live inputs in the ledger under the live date and name.
func (s *Session) Save() ledger.Scenario {
	s.mu.Lock()
	date, name, a, v := s.date, s.name, s.assumptions, s.volume
	s.mu.Unlock()

	saved := s.ledger.Save(date, name, a, v)
	s.logger.Info("scenario saved",
		zap.String("op", "session.Save"),
		zap.String("label", saved.Label()),
	)
	return saved
}

// Delete removes the scenarios identified by labels.
func (s *Session) Delete(labels []string) int {
	removed := s.ledger.Delete(labels)
	s.logger.Info("scenarios deleted",
		zap.String("op", "session.Delete"),
		zap.Int("removed", removed),
	)
	return removed
}

// Breakdown decomposes the live rates per transaction.
func (s *Session) Breakdown() []economics.BreakdownItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return economics.Breakdown(s.assumptions)
}

// Waterfall lays out the live breakdown as a running sum.
func (s *Session) Waterfall() []economics.WaterfallStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return economics.Waterfall(s.assumptions)
}

// CompareToBaseline returns the live inputs minus the baseline scenario.
func (s *Session) CompareToBaseline() (economics.Comparison, bool) {
	baseline, ok := s.ledger.Baseline()
	if !ok {
		return economics.Comparison{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return economics.Compare(baseline.Assumptions, baseline.Volume, s.assumptions, s.volume), true
}
