package validation

import (
	"fmt"

	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/mathutil"
)

// ValidatePercentage checks that a percentage input is finite and within
// [0, 100].
func ValidatePercentage(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return fmt.Errorf("%s must be a finite number", field)
	}
	if value < constants.MinPercentage || value > constants.MaxPercentage {
		return fmt.Errorf("%s must be between %.0f and %.0f, got %g",
			field, constants.MinPercentage, constants.MaxPercentage, value)
	}
	return nil
}

// ValidateNonNegative checks that a volume input is finite and not negative.
func ValidateNonNegative(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return fmt.Errorf("%s must be a finite number", field)
	}
	if value < 0 {
		return fmt.Errorf("%s must not be negative, got %g", field, value)
	}
	return nil
}

// ValidateAssumptions checks every rate of a.
func ValidateAssumptions(a economics.Assumptions) error {
	checks := []struct {
		field string
		value float64
	}{
		{"revenuePct", a.RevenuePct},
		{"paymentCostPct", a.PaymentCostPct},
		{"liquidityCostPct", a.LiquidityCostPct},
		{"defaultRatePct", a.DefaultRatePct},
	}
	for _, c := range checks {
		if err := ValidatePercentage(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVolume checks every volume assumption of v.
func ValidateVolume(v economics.Volume) error {
	checks := []struct {
		field string
		value float64
	}{
		{"loanBookK", v.LoanBookK},
		{"cyclesPerMonth", v.CyclesPerMonth},
		{"avgLoanValue", v.AvgLoanValue},
		{"txPerClientPerMonth", v.TxPerClientPerMonth},
	}
	for _, c := range checks {
		if err := ValidateNonNegative(c.field, c.value); err != nil {
			return err
		}
	}
	return nil
}

// AssumptionsEqual reports whether two rate sets match within tolerance.
func AssumptionsEqual(a, b economics.Assumptions) bool {
	eq := func(x, y float64) bool { return mathutil.WithinTolerance(x, y, constants.ComparisonTolerance) }
	return eq(a.RevenuePct, b.RevenuePct) &&
		eq(a.PaymentCostPct, b.PaymentCostPct) &&
		eq(a.LiquidityCostPct, b.LiquidityCostPct) &&
		eq(a.DefaultRatePct, b.DefaultRatePct)
}
