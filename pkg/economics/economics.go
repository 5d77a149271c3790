// Package economics computes the unit economics of a micro-lending book from
// a set of per-transaction rate assumptions and volume assumptions.
//
// All percentages are on a 0-100 scale and expressed as a share of
// transaction value. Compute never fails: out-of-range inputs simply produce
// out-of-range outputs (a negative contribution margin is a valid loss-making
// scenario), and every degenerate divisor yields 0 instead of NaN or an
// infinity so that results are always safe to display.
package economics

import (
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/mathutil"
)

// Assumptions holds the per-transaction rates.
type Assumptions struct {
	RevenuePct       float64 `json:"revenuePct" yaml:"revenuePct"`
	PaymentCostPct   float64 `json:"paymentCostPct" yaml:"paymentCostPct"`
	LiquidityCostPct float64 `json:"liquidityCostPct" yaml:"liquidityCostPct"` // over the 10-day reference period
	DefaultRatePct   float64 `json:"defaultRatePct" yaml:"defaultRatePct"`     // at the 30-day horizon
}

// Volume holds the loan book volume assumptions.
type Volume struct {
	LoanBookK           float64 `json:"loanBookK" yaml:"loanBookK"` // thousands of currency units
	CyclesPerMonth      float64 `json:"cyclesPerMonth" yaml:"cyclesPerMonth"`
	AvgLoanValue        float64 `json:"avgLoanValue" yaml:"avgLoanValue"`
	TxPerClientPerMonth float64 `json:"txPerClientPerMonth" yaml:"txPerClientPerMonth"`
}

// Metrics holds every value derived from an Assumptions and Volume pair.
type Metrics struct {
	AnnualizedLiquidityCostPct float64 `json:"annualizedLiquidityCostPct" yaml:"annualizedLiquidityCostPct"`
	TotalCostPct               float64 `json:"totalCostPct" yaml:"totalCostPct"`
	ContributionMarginPct      float64 `json:"contributionMarginPct" yaml:"contributionMarginPct"`

	MonthlyVolume              float64 `json:"monthlyVolume" yaml:"monthlyVolume"`
	MonthlyRevenue             float64 `json:"monthlyRevenue" yaml:"monthlyRevenue"`
	AnnualRevenue              float64 `json:"annualRevenue" yaml:"annualRevenue"`
	ContributionValueKPerMonth float64 `json:"contributionValueKPerMonth" yaml:"contributionValueKPerMonth"`
	LoansPerMonth              float64 `json:"loansPerMonth" yaml:"loansPerMonth"`
	ClientsPerMonth            float64 `json:"clientsPerMonth" yaml:"clientsPerMonth"`
	RevenuePerLoan             float64 `json:"revenuePerLoan" yaml:"revenuePerLoan"`
	RevenuePerClientPerMonth   float64 `json:"revenuePerClientPerMonth" yaml:"revenuePerClientPerMonth"`
	EffectiveTakeRatePct       float64 `json:"effectiveTakeRatePct" yaml:"effectiveTakeRatePct"`
}

// DefaultAssumptions returns the rates pre-filled in a new session.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		RevenuePct:       constants.DefaultRevenuePct,
		PaymentCostPct:   constants.DefaultPaymentCostPct,
		LiquidityCostPct: constants.DefaultLiquidityCostPct,
		DefaultRatePct:   constants.DefaultDefaultRatePct,
	}
}

// DefaultVolume returns the volume assumptions pre-filled in a new session.
func DefaultVolume() Volume {
	return Volume{
		LoanBookK:           constants.DefaultLoanBookK,
		CyclesPerMonth:      constants.DefaultCyclesPerMonth,
		AvgLoanValue:        constants.DefaultAvgLoanValue,
		TxPerClientPerMonth: constants.DefaultTxPerClientMonth,
	}
}

// AnnualizedLiquidityCostPct converts a liquidity cost over the reference
// period into a yearly rate.
func AnnualizedLiquidityCostPct(liquidityCostPct float64) float64 {
	return liquidityCostPct * constants.DaysPerYear / constants.LiquidityPeriodDays
}

// TotalCostPct is the sum of payment, liquidity and credit loss costs.
func (a Assumptions) TotalCostPct() float64 {
	return a.PaymentCostPct + a.LiquidityCostPct + a.DefaultRatePct
}

// ContributionMarginPct is revenue minus total cost. It may be negative.
func (a Assumptions) ContributionMarginPct() float64 {
	return a.RevenuePct - a.TotalCostPct()
}

// MonthlyVolume is the value of transactions financed per month.
func (v Volume) MonthlyVolume() float64 {
	return v.LoanBookK * constants.ThousandMultiplier * v.CyclesPerMonth
}

// Compute derives the full Metrics record. It is a pure function.
func Compute(a Assumptions, v Volume) Metrics {
	var m Metrics

	m.AnnualizedLiquidityCostPct = AnnualizedLiquidityCostPct(a.LiquidityCostPct)
	m.TotalCostPct = a.TotalCostPct()
	m.ContributionMarginPct = a.ContributionMarginPct()

	m.MonthlyVolume = v.MonthlyVolume()
	m.MonthlyRevenue = mathutil.ApplyPercentage(m.MonthlyVolume, a.RevenuePct)
	m.AnnualRevenue = m.MonthlyRevenue * constants.MonthsPerYear
	m.ContributionValueKPerMonth = mathutil.ApplyPercentage(v.LoanBookK*v.CyclesPerMonth, m.ContributionMarginPct)

	m.LoansPerMonth = mathutil.SafePositiveDivide(m.MonthlyVolume, v.AvgLoanValue)
	m.ClientsPerMonth = mathutil.SafePositiveDivide(m.LoansPerMonth, v.TxPerClientPerMonth)

	m.RevenuePerLoan = mathutil.ApplyPercentage(v.AvgLoanValue, a.RevenuePct)
	m.RevenuePerClientPerMonth = m.RevenuePerLoan * v.TxPerClientPerMonth

	m.EffectiveTakeRatePct = mathutil.SafePositiveDivide(m.MonthlyRevenue, m.MonthlyVolume) * constants.PercentageMultiplier

	return m
}
