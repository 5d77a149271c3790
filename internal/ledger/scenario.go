package ledger

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
)

// Flat record keys, shared by snapshots, CSV output and the durable store.
const (
	FieldID                         = "id"
	FieldDate                       = "date"
	FieldName                       = "name"
	FieldRevenuePct                 = "revenue_pct"
	FieldPaymentCostPct             = "payment_cost_pct"
	FieldLiquidityCostPct           = "liquidity_cost_pct"
	FieldDefaultRatePct             = "default_rate_pct"
	FieldLoanBookK                  = "loan_book_k"
	FieldCyclesPerMonth             = "cycles_per_month"
	FieldAvgLoanValue               = "avg_loan_value"
	FieldTxPerClientPerMonth        = "tx_per_client_per_month"
	FieldAnnualizedLiquidityCostPct = "annualized_liquidity_cost_pct"
	FieldTotalCostPct               = "total_cost_pct"
	FieldContributionMarginPct      = "contribution_margin_pct"
	FieldMonthlyVolume              = "monthly_volume"
	FieldMonthlyRevenue             = "monthly_revenue"
	FieldAnnualRevenue              = "annual_revenue"
	FieldContributionValueKPerMonth = "contribution_value_k_per_month"
	FieldLoansPerMonth              = "loans_per_month"
	FieldClientsPerMonth            = "clients_per_month"
	FieldRevenuePerLoan             = "revenue_per_loan"
	FieldRevenuePerClientPerMonth   = "revenue_per_client_per_month"
	FieldEffectiveTakeRatePct       = "effective_take_rate_pct"
)

// Scenario is an immutable snapshot of the live inputs and their derived
// metrics, taken when the user saves.
type Scenario struct {
	ID          string                `json:"id"`
	Date        time.Time             `json:"date"`
	Name        string                `json:"name"`
	Assumptions economics.Assumptions `json:"assumptions"`
	Volume      economics.Volume      `json:"volume"`
	Metrics     economics.Metrics     `json:"metrics"`
}

// Label returns the identity string used to select scenarios for deletion.
func (s Scenario) Label() string {
	return Label(s.Date, s.Name)
}

// Label builds the "<date> – <name>" identity of a scenario.
func Label(date time.Time, name string) string {
	return datetime.Format(date) + constants.IdentitySeparator + name
}

// ToMap flattens the scenario into a single-level map of its fields.
func (s Scenario) ToMap() map[string]interface{} {
	return map[string]interface{}{
		FieldID:                         s.ID,
		FieldDate:                       datetime.Format(s.Date),
		FieldName:                       s.Name,
		FieldRevenuePct:                 s.Assumptions.RevenuePct,
		FieldPaymentCostPct:             s.Assumptions.PaymentCostPct,
		FieldLiquidityCostPct:           s.Assumptions.LiquidityCostPct,
		FieldDefaultRatePct:             s.Assumptions.DefaultRatePct,
		FieldLoanBookK:                  s.Volume.LoanBookK,
		FieldCyclesPerMonth:             s.Volume.CyclesPerMonth,
		FieldAvgLoanValue:               s.Volume.AvgLoanValue,
		FieldTxPerClientPerMonth:        s.Volume.TxPerClientPerMonth,
		FieldAnnualizedLiquidityCostPct: s.Metrics.AnnualizedLiquidityCostPct,
		FieldTotalCostPct:               s.Metrics.TotalCostPct,
		FieldContributionMarginPct:      s.Metrics.ContributionMarginPct,
		FieldMonthlyVolume:              s.Metrics.MonthlyVolume,
		FieldMonthlyRevenue:             s.Metrics.MonthlyRevenue,
		FieldAnnualRevenue:              s.Metrics.AnnualRevenue,
		FieldContributionValueKPerMonth: s.Metrics.ContributionValueKPerMonth,
		FieldLoansPerMonth:              s.Metrics.LoansPerMonth,
		FieldClientsPerMonth:            s.Metrics.ClientsPerMonth,
		FieldRevenuePerLoan:             s.Metrics.RevenuePerLoan,
		FieldRevenuePerClientPerMonth:   s.Metrics.RevenuePerClientPerMonth,
		FieldEffectiveTakeRatePct:       s.Metrics.EffectiveTakeRatePct,
	}
}

// ScenarioFromMap rebuilds a scenario from its flat representation. Missing
// numeric fields decode as 0; date and name are required.
func ScenarioFromMap(record map[string]interface{}) (Scenario, error) {
	var s Scenario

	dateStr, err := cast.ToStringE(record[FieldDate])
	if err != nil {
		return s, fmt.Errorf("invalid %s field: %w", FieldDate, err)
	}
	s.Date, err = datetime.ParseDate(dateStr)
	if err != nil {
		return s, err
	}

	name, ok := record[FieldName]
	if !ok {
		return s, fmt.Errorf("missing %s field", FieldName)
	}
	s.Name = cast.ToString(name)
	s.ID = cast.ToString(record[FieldID])

	floats := []struct {
		key string
		dst *float64
	}{
		{FieldRevenuePct, &s.Assumptions.RevenuePct},
		{FieldPaymentCostPct, &s.Assumptions.PaymentCostPct},
		{FieldLiquidityCostPct, &s.Assumptions.LiquidityCostPct},
		{FieldDefaultRatePct, &s.Assumptions.DefaultRatePct},
		{FieldLoanBookK, &s.Volume.LoanBookK},
		{FieldCyclesPerMonth, &s.Volume.CyclesPerMonth},
		{FieldAvgLoanValue, &s.Volume.AvgLoanValue},
		{FieldTxPerClientPerMonth, &s.Volume.TxPerClientPerMonth},
		{FieldAnnualizedLiquidityCostPct, &s.Metrics.AnnualizedLiquidityCostPct},
		{FieldTotalCostPct, &s.Metrics.TotalCostPct},
		{FieldContributionMarginPct, &s.Metrics.ContributionMarginPct},
		{FieldMonthlyVolume, &s.Metrics.MonthlyVolume},
		{FieldMonthlyRevenue, &s.Metrics.MonthlyRevenue},
		{FieldAnnualRevenue, &s.Metrics.AnnualRevenue},
		{FieldContributionValueKPerMonth, &s.Metrics.ContributionValueKPerMonth},
		{FieldLoansPerMonth, &s.Metrics.LoansPerMonth},
		{FieldClientsPerMonth, &s.Metrics.ClientsPerMonth},
		{FieldRevenuePerLoan, &s.Metrics.RevenuePerLoan},
		{FieldRevenuePerClientPerMonth, &s.Metrics.RevenuePerClientPerMonth},
		{FieldEffectiveTakeRatePct, &s.Metrics.EffectiveTakeRatePct},
	}
	for _, f := range floats {
		raw, ok := record[f.key]
		if !ok || raw == nil {
			continue
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return s, fmt.Errorf("invalid %s field: %w", f.key, err)
		}
		*f.dst = v
	}

	return s, nil
}
