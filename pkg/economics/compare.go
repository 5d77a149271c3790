package economics

// Comparison holds the field-wise difference between a scenario and a
// reference, current minus baseline.
type Comparison struct {
	Assumptions Assumptions `json:"assumptions"`
	Volume      Volume      `json:"volume"`
	Metrics     Metrics     `json:"metrics"`
}

// Compare returns current minus baseline for every input and derived field.
func Compare(baseA Assumptions, baseV Volume, curA Assumptions, curV Volume) Comparison {
	return Comparison{
		Assumptions: curA.Sub(baseA),
		Volume:      curV.Sub(baseV),
		Metrics:     Compute(curA, curV).Sub(Compute(baseA, baseV)),
	}
}

// Sub returns a - other field by field.
func (a Assumptions) Sub(other Assumptions) Assumptions {
	return Assumptions{
		RevenuePct:       a.RevenuePct - other.RevenuePct,
		PaymentCostPct:   a.PaymentCostPct - other.PaymentCostPct,
		LiquidityCostPct: a.LiquidityCostPct - other.LiquidityCostPct,
		DefaultRatePct:   a.DefaultRatePct - other.DefaultRatePct,
	}
}

// Sub returns v - other field by field.
func (v Volume) Sub(other Volume) Volume {
	return Volume{
		LoanBookK:           v.LoanBookK - other.LoanBookK,
		CyclesPerMonth:      v.CyclesPerMonth - other.CyclesPerMonth,
		AvgLoanValue:        v.AvgLoanValue - other.AvgLoanValue,
		TxPerClientPerMonth: v.TxPerClientPerMonth - other.TxPerClientPerMonth,
	}
}

// Sub returns m - other field by field.
func (m Metrics) Sub(other Metrics) Metrics {
	return Metrics{
		AnnualizedLiquidityCostPct: m.AnnualizedLiquidityCostPct - other.AnnualizedLiquidityCostPct,
		TotalCostPct:               m.TotalCostPct - other.TotalCostPct,
		ContributionMarginPct:      m.ContributionMarginPct - other.ContributionMarginPct,
		MonthlyVolume:              m.MonthlyVolume - other.MonthlyVolume,
		MonthlyRevenue:             m.MonthlyRevenue - other.MonthlyRevenue,
		AnnualRevenue:              m.AnnualRevenue - other.AnnualRevenue,
		ContributionValueKPerMonth: m.ContributionValueKPerMonth - other.ContributionValueKPerMonth,
		LoansPerMonth:              m.LoansPerMonth - other.LoansPerMonth,
		ClientsPerMonth:            m.ClientsPerMonth - other.ClientsPerMonth,
		RevenuePerLoan:             m.RevenuePerLoan - other.RevenuePerLoan,
		RevenuePerClientPerMonth:   m.RevenuePerClientPerMonth - other.RevenuePerClientPerMonth,
		EffectiveTakeRatePct:       m.EffectiveTakeRatePct - other.EffectiveTakeRatePct,
	}
}
