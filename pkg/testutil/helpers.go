// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"
	"testing"

	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/mathutil"
	"go.uber.org/zap"
)

// DefaultTolerance is the absolute tolerance used by AssertClose.
const DefaultTolerance = 1e-9

// FindScenario finds a scenario by name in the results slice.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(scenarios []ledger.Scenario, name string) *ledger.Scenario {
	for i := range scenarios {
		if scenarios[i].Name == name {
			return &scenarios[i]
		}
	}
	return nil
}

// AssertClose fails the test when got and expected differ by more than
// DefaultTolerance.
func AssertClose(t testing.TB, field string, got, expected float64) {
	t.Helper()
	if !mathutil.WithinTolerance(got, expected, DefaultTolerance) {
		t.Errorf("%s = %v, expected %v", field, got, expected)
	}
}

// SequentialIDs returns an ID generator yielding "id-1", "id-2", ...
func SequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// NewLedger builds a ledger with deterministic IDs and a no-op logger.
func NewLedger(replaceOnDate bool, presets ...ledger.Preset) (*ledger.Ledger, error) {
	table, err := ledger.NewPresetTable(presets)
	if err != nil {
		return nil, err
	}
	return ledger.New(zap.NewNop(), ledger.Options{
		ReplaceOnDate: replaceOnDate,
		Presets:       table,
		NewID:         SequentialIDs(),
	}), nil
}

// BaselineAssumptions are the rates of the first calculator revision.
func BaselineAssumptions() economics.Assumptions {
	return economics.Assumptions{RevenuePct: 3.8, PaymentCostPct: 1.8, LiquidityCostPct: 0.55, DefaultRatePct: 1.7}
}
