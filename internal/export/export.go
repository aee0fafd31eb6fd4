// Package export renders the assembled report and the transaction list
// into the formats consumers ask for: JSON, plain text, CSV and PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/currency"
	"github.com/finlens/backend/pkg/datetime"
)

// ReportJSON marshals the full report with indentation.
func ReportJSON(report *model.Report) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

// TransactionsCSV renders the normalized transaction list.
func TransactionsCSV(txs []model.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"Date", "Description", "Amount", "Direction", "Category", "CostType", "Month", "Source"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}

	for _, tx := range txs {
		row := []string{
			tx.Date.Format(datetime.DateFormat),
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.Direction),
			string(tx.Category),
			string(tx.CostType),
			tx.MonthKey,
			tx.SourceFile,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV writer: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportText renders a human-readable summary of the report, the shape
// used by the chat assistant and the CLI.
func ReportText(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Financial report, %s to %s (%d days)\n",
		report.Period.Start.Format(datetime.DateFormat),
		report.Period.End.Format(datetime.DateFormat),
		report.Period.Days)
	fmt.Fprintf(&b, "Transactions: %d\n", report.Summary.TransactionCount)
	fmt.Fprintf(&b, "Total income:  %s\n", money(report.Summary.TotalIncome))
	fmt.Fprintf(&b, "Total expense: %s\n", money(report.Summary.TotalExpense))
	fmt.Fprintf(&b, "Net balance:   %s\n", money(report.Summary.NetBalance))

	if hs := report.HealthScore; hs != nil {
		fmt.Fprintf(&b, "\nHealth score: %.1f/100 (%s)\n", hs.Score, hs.Classification)
		names := make([]string, 0, len(hs.Components))
		for name := range hs.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			comp := hs.Components[name]
			fmt.Fprintf(&b, "  %-22s %5.1f/%v  %s\n", name, comp.Score, comp.MaxScore, comp.Description)
		}
	}

	if len(report.Alerts) > 0 {
		fmt.Fprintf(&b, "\nAlerts (%d):\n", len(report.Alerts))
		for _, a := range sortedBySeverity(report.Alerts) {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", strings.ToUpper(string(a.Severity)), a.Title, a.Message)
		}
	}

	if p := report.Patterns; p != nil && len(p.ByCategory) > 0 {
		b.WriteString("\nTop categories:\n")
		limit := len(p.ByCategory)
		if limit > 5 {
			limit = 5
		}
		for _, cs := range p.ByCategory[:limit] {
			fmt.Fprintf(&b, "  %-15s %s (%.1f%%)\n", cs.Category, money(cs.Total), cs.Share*100)
		}
	}

	if pred := report.Predictions; pred != nil && pred.NextMonthAverage != nil {
		fmt.Fprintf(&b, "\nNext month estimate: %s", money(*pred.NextMonthAverage))
		if pred.ExpenseTrend != nil {
			fmt.Fprintf(&b, " (trend %s)", pred.ExpenseTrend.Direction)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func money(d decimal.Decimal) string {
	return currency.NewMoney(d, currency.DefaultCurrency).Format()
}

// sortedBySeverity orders alerts critical first. The report itself
// carries no ordering guarantee.
func sortedBySeverity(alerts []model.Alert) []model.Alert {
	rank := map[model.Severity]int{
		model.SeverityCritical: 0,
		model.SeverityHigh:     1,
		model.SeverityMedium:   2,
		model.SeverityLow:      3,
	}
	out := make([]model.Alert, len(alerts))
	copy(out, alerts)
	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Severity] < rank[out[j].Severity]
	})
	return out
}
