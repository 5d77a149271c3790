package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
)

// ErrDuplicatePresetDate is returned when two presets share a calendar date.
var ErrDuplicatePresetDate = errors.New("duplicate preset date")

// Preset is a canned assumption set attached to a known calendar date.
// Volume is optional; when nil, applying the preset leaves the live volume
// untouched.
type Preset struct {
	Date        time.Time             `json:"date"`
	Name        string                `json:"name"`
	Version     int                   `json:"version"`
	Assumptions economics.Assumptions `json:"assumptions"`
	Volume      *economics.Volume     `json:"volume,omitempty"`
}

// PresetTable maps calendar dates to presets. Lookups are exact date matches.
type PresetTable struct {
	byDate map[string]Preset
}

// NewPresetTable indexes presets by date.
func NewPresetTable(presets []Preset) (*PresetTable, error) {
	table := &PresetTable{byDate: make(map[string]Preset, len(presets))}
	for _, p := range presets {
		key := datetime.Format(p.Date)
		if existing, ok := table.byDate[key]; ok {
			return nil, fmt.Errorf("%w: %s used by %q and %q", ErrDuplicatePresetDate, key, existing.Name, p.Name)
		}
		p.Date = datetime.Truncate(p.Date)
		table.byDate[key] = p
	}
	return table, nil
}

// Lookup returns the preset registered for date, if any.
func (t *PresetTable) Lookup(date time.Time) (Preset, bool) {
	if t == nil {
		return Preset{}, false
	}
	p, ok := t.byDate[datetime.Format(date)]
	return p, ok
}

// All returns every preset ordered by date.
func (t *PresetTable) All() []Preset {
	if t == nil {
		return nil
	}
	presets := make([]Preset, 0, len(t.byDate))
	for _, p := range t.byDate {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Date.Before(presets[j].Date)
	})
	return presets
}

// Len returns the number of registered presets.
func (t *PresetTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byDate)
}
