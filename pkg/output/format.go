// Package output provides utilities for formatting and displaying scenarios
// and metrics.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/waribei/unit-economics/internal/ledger"
	"github.com/waribei/unit-economics/pkg/constants"
	"github.com/waribei/unit-economics/pkg/datetime"
	"github.com/waribei/unit-economics/pkg/economics"
	"github.com/waribei/unit-economics/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CsvColumns is the column order of CSV output.
var CsvColumns = []string{
	ledger.FieldDate,
	ledger.FieldName,
	ledger.FieldRevenuePct,
	ledger.FieldPaymentCostPct,
	ledger.FieldLiquidityCostPct,
	ledger.FieldDefaultRatePct,
	ledger.FieldLoanBookK,
	ledger.FieldCyclesPerMonth,
	ledger.FieldAvgLoanValue,
	ledger.FieldTxPerClientPerMonth,
	ledger.FieldAnnualizedLiquidityCostPct,
	ledger.FieldTotalCostPct,
	ledger.FieldContributionMarginPct,
	ledger.FieldMonthlyVolume,
	ledger.FieldMonthlyRevenue,
	ledger.FieldAnnualRevenue,
	ledger.FieldContributionValueKPerMonth,
	ledger.FieldLoansPerMonth,
	ledger.FieldClientsPerMonth,
	ledger.FieldRevenuePerLoan,
	ledger.FieldRevenuePerClientPerMonth,
	ledger.FieldEffectiveTakeRatePct,
	ledger.FieldID,
}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(scenarios []ledger.Scenario) {
	_ = WritePretty(os.Stdout, scenarios)
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(scenarios []ledger.Scenario) {
	_ = WriteCSV(os.Stdout, scenarios)
}

// WritePretty writes the scenarios as an aligned table, one row per scenario.
func WritePretty(w io.Writer, scenarios []ledger.Scenario) error {
	p := message.NewPrinter(language.English)

	if _, err := fmt.Fprintf(w, "--- Scenarios (%d) ---\n", len(scenarios)); err != nil {
		return err
	}
	if len(scenarios) == 0 {
		_, err := fmt.Fprintln(w, "No scenario saved yet.")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-10s | %-20s | %9s | %9s | %9s | %9s | %9s | %15s | %15s\n",
		"Date", "Name", "Revenue", "Payment", "Liquidity", "Losses", "Margin", "Monthly volume", "Monthly revenue"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-10s | %-20s | %9s | %9s | %9s | %9s | %9s | %15s | %15s\n",
		"____", "____", "_______", "_______", "_________", "______", "______", "______________", "_______________"); err != nil {
		return err
	}
	for _, s := range scenarios {
		_, err := p.Fprintf(w, "%-10s | %-20s | %9s | %9s | %9s | %9s | %9s | %15.2f | %15.2f\n",
			datetime.Format(s.Date),
			s.Name,
			format.Percent(s.Assumptions.RevenuePct),
			format.Percent(s.Assumptions.PaymentCostPct),
			format.Percent(s.Assumptions.LiquidityCostPct),
			format.Percent(s.Assumptions.DefaultRatePct),
			format.Percent(s.Metrics.ContributionMarginPct),
			s.Metrics.MonthlyVolume,
			s.Metrics.MonthlyRevenue,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteMetrics writes a labelled listing of a metrics record.
func WriteMetrics(w io.Writer, a economics.Assumptions, m economics.Metrics) error {
	rows := []struct {
		label string
		value string
	}{
		{"Revenue / trx", format.Percent(a.RevenuePct)},
		{"Payment cost / trx", format.Percent(a.PaymentCostPct)},
		{fmt.Sprintf("Liquidity cost (%dd)", constants.LiquidityPeriodDays), format.Percent(a.LiquidityCostPct)},
		{"Annualized liquidity cost", format.Percent(m.AnnualizedLiquidityCostPct)},
		{fmt.Sprintf("Default rate (%dd)", constants.DefaultHorizonDays), format.Percent(a.DefaultRatePct)},
		{"Total cost / trx", format.Percent(m.TotalCostPct)},
		{"Contribution margin / trx", format.Percent(m.ContributionMarginPct)},
		{"Monthly volume", format.Amount(m.MonthlyVolume)},
		{"Monthly revenue", format.Amount(m.MonthlyRevenue)},
		{"Annual revenue", format.Amount(m.AnnualRevenue)},
		{"Contribution (k / month)", format.Amount(m.ContributionValueKPerMonth)},
		{"Loans / month", format.Amount(m.LoansPerMonth)},
		{"Clients / month", format.Amount(m.ClientsPerMonth)},
		{"Revenue / loan", format.Amount(m.RevenuePerLoan)},
		{"Revenue / client / month", format.Amount(m.RevenuePerClientPerMonth)},
		{"Effective take rate", format.Percent(m.EffectiveTakeRatePct)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, "%-26s %s\n", row.label+":", row.value); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the scenarios with a header row using CsvColumns.
func WriteCSV(w io.Writer, scenarios []ledger.Scenario) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CsvColumns); err != nil {
		return err
	}
	for _, s := range scenarios {
		record := s.ToMap()
		row := make([]string, len(CsvColumns))
		for i, col := range CsvColumns {
			switch v := record[col].(type) {
			case float64:
				row[i] = strconv.FormatFloat(v, 'f', -1, 64)
			case string:
				row[i] = v
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns the CSV rendering of the scenarios.
func CsvString(scenarios []ledger.Scenario) string {
	var buf bytes.Buffer
	_ = WriteCSV(&buf, scenarios)
	return buf.String()
}
