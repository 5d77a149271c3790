package config

import (
	"fmt"

	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors (unparseable or duplicate dates) surface when
// the preset table and history are converted.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Store.Backend != "" {
		if err := validation.ValidateStoreBackend(c.Store.Backend); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	warnings = append(warnings, inputWarnings("Defaults", c.Defaults.Assumptions, &c.Defaults.Volume)...)

	for _, p := range c.Presets {
		warnings = append(warnings, inputWarnings(fmt.Sprintf("Preset '%s' (%s)", p.Name, p.Date), p.Assumptions, p.Volume)...)
	}
	for _, q := range c.QuickScenarios {
		warnings = append(warnings, inputWarnings(fmt.Sprintf("Quick scenario '%s'", q.Name), q.Assumptions, nil)...)
	}
	for _, h := range c.History {
		warnings = append(warnings, inputWarnings(fmt.Sprintf("History entry '%s' (%s)", h.Name, h.Date), h.Assumptions, &h.Volume)...)
	}

	warnings = append(warnings, c.driftWarnings()...)

	if c.Ledger.ReplaceOnDate {
		seen := make(map[string]string)
		for _, h := range c.History {
			if other, ok := seen[h.Date]; ok {
				warnings = append(warnings, fmt.Sprintf("History entries '%s' and '%s' share date %s; only the later one is kept once a scenario is saved on that date",
					other, h.Name, h.Date))
				continue
			}
			seen[h.Date] = h.Name
		}
	}

	return warnings
}

func inputWarnings(owner string, a economics.Assumptions, v *economics.Volume) []string {
	var warnings []string
	if err := validation.ValidateAssumptions(a); err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v", owner, err))
	}
	if v != nil {
		if err := validation.ValidateVolume(*v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", owner, err))
		}
	}
	return warnings
}

// driftWarnings flags named assumption sets that appear more than once with
// different values.
func (c *Configuration) driftWarnings() []string {
	type source struct {
		owner string
		rates economics.Assumptions
	}
	byName := make(map[string][]source)
	var order []string
	add := func(name, owner string, a economics.Assumptions) {
		if name == "" {
			return
		}
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], source{owner: owner, rates: a})
	}

	for _, p := range c.Presets {
		add(p.Name, fmt.Sprintf("preset %s", p.Date), p.Assumptions)
	}
	for _, q := range c.QuickScenarios {
		add(q.Name, "quick scenario", q.Assumptions)
	}

	var warnings []string
	for _, name := range order {
		sources := byName[name]
		for _, s := range sources[1:] {
			if !validation.AssumptionsEqual(sources[0].rates, s.rates) {
				warnings = append(warnings, fmt.Sprintf("Scenario '%s' has different values in %s and %s",
					name, sources[0].owner, s.owner))
			}
		}
	}
	return warnings
}
