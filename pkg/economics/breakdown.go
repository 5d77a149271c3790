package economics

// Breakdown item labels, in display order.
const (
	ItemRevenue            = "Revenue"
	ItemPaymentCost        = "Payment cost"
	ItemLiquidityCost      = "Liquidity cost (10d)"
	ItemCreditLosses       = "Losses (30d)"
	ItemContributionMargin = "Contribution margin"
)

// BreakdownItem is one bar of the per-transaction decomposition. Costs carry
// a negative value.
type BreakdownItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// WaterfallStep is one bar of a waterfall chart. Relative steps float from
// Start to End; the closing total step always starts at 0.
type WaterfallStep struct {
	Label string  `json:"label"`
	Delta float64 `json:"delta"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Total bool    `json:"total"`
}

// Breakdown decomposes the contribution margin per transaction into revenue,
// each cost line and the resulting margin.
func Breakdown(a Assumptions) []BreakdownItem {
	return []BreakdownItem{
		{Label: ItemRevenue, Value: a.RevenuePct},
		{Label: ItemPaymentCost, Value: -a.PaymentCostPct},
		{Label: ItemLiquidityCost, Value: -a.LiquidityCostPct},
		{Label: ItemCreditLosses, Value: -a.DefaultRatePct},
		{Label: ItemContributionMargin, Value: a.ContributionMarginPct()},
	}
}

// Waterfall lays out the breakdown as a running sum. Every item except the
// margin moves the running total by its value; the margin is rendered as a
// total bar from 0 to the final running total.
func Waterfall(a Assumptions) []WaterfallStep {
	items := Breakdown(a)
	steps := make([]WaterfallStep, 0, len(items))

	running := 0.0
	for _, item := range items[:len(items)-1] {
		step := WaterfallStep{
			Label: item.Label,
			Delta: item.Value,
			Start: running,
		}
		running += item.Value
		step.End = running
		steps = append(steps, step)
	}

	margin := items[len(items)-1]
	steps = append(steps, WaterfallStep{
		Label: margin.Label,
		Delta: margin.Value,
		Start: 0,
		End:   running,
		Total: true,
	})

	return steps
}
