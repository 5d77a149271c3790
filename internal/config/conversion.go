// Package config defines conversion utilities for configuration objects.
package config

import (
	"fmt"

	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/internal/session"
	"github.com/waribei/unit-economics/pkg/datetime"
)

// PresetTable parses the preset rows into a ledger.PresetTable. Unparseable
// dates and duplicate dates are errors.
func (c *Configuration) PresetTable() (*ledger.PresetTable, error) {
	presets := make([]ledger.Preset, 0, len(c.Presets))
	for _, p := range c.Presets {
		date, err := datetime.ParseDate(p.Date)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		preset := ledger.Preset{
			Date:        date,
			Name:        p.Name,
			Version:     p.Version,
			Assumptions: p.Assumptions,
		}
		if p.Volume != nil {
			v := *p.Volume
			preset.Volume = &v
		}
		presets = append(presets, preset)
	}
	return ledger.NewPresetTable(presets)
}

// HistoryEntries parses the seed history rows. Entries compute their full
// metrics unless computeMetrics is explicitly false.
func (c *Configuration) HistoryEntries() ([]ledger.HistoryEntry, error) {
	entries := make([]ledger.HistoryEntry, 0, len(c.History))
	for _, h := range c.History {
		date, err := datetime.ParseDate(h.Date)
		if err != nil {
			return nil, fmt.Errorf("history entry %q: %w", h.Name, err)
		}
		compute := true
		if h.ComputeMetrics != nil {
			compute = *h.ComputeMetrics
		}
		entries = append(entries, ledger.HistoryEntry{
			Date:           date,
			Name:           h.Name,
			Assumptions:    h.Assumptions,
			Volume:         h.Volume,
			ComputeMetrics: compute,
		})
	}
	return entries, nil
}

// SessionOptions converts the live defaults and quick scenarios.
func (c *Configuration) SessionOptions() session.Options {
	quick := make([]session.QuickScenario, 0, len(c.QuickScenarios))
	for _, q := range c.QuickScenarios {
		quick = append(quick, session.QuickScenario{
			Name:        q.Name,
			Assumptions: q.Assumptions,
		})
	}
	return session.Options{
		Assumptions:    c.Defaults.Assumptions,
		Volume:         c.Defaults.Volume,
		Name:           c.Defaults.Name,
		QuickScenarios: quick,
	}
}

// LedgerOptions converts the ledger section, including the preset table.
func (c *Configuration) LedgerOptions() (ledger.Options, error) {
	table, err := c.PresetTable()
	if err != nil {
		return ledger.Options{}, err
	}
	return ledger.Options{
		ReplaceOnDate: c.Ledger.ReplaceOnDate,
		Presets:       table,
	}, nil
}
