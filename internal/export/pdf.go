package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

// ReportPDF renders the report as a one-page A4 summary.
func ReportPDF(report *model.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 12, "FinLens", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 14)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 8, fmt.Sprintf("Financial Report - %s to %s",
		report.Period.Start.Format(datetime.DateFormat),
		report.Period.End.Format(datetime.DateFormat)), "", 1, "C", false, 0, "")

	pdf.Ln(10)

	// Summary Section
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(5)

	colWidth := float64(85)

	summaryRow := func(label, value string, r, g, b int) {
		pdf.SetFont("Arial", "", 11)
		pdf.SetTextColor(108, 117, 125)
		pdf.CellFormat(colWidth, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(r, g, b)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(colWidth, 7, value, "", 1, "R", false, 0, "")
	}

	summaryRow("Transactions", fmt.Sprintf("%d", report.Summary.TransactionCount), 33, 37, 41)
	summaryRow("Total Income", money(report.Summary.TotalIncome), 40, 167, 69)
	summaryRow("Total Expenses", money(report.Summary.TotalExpense), 220, 53, 69)
	summaryRow("Net Balance", money(report.Summary.NetBalance), 33, 37, 41)
	if hs := report.HealthScore; hs != nil {
		summaryRow("Health Score", fmt.Sprintf("%.1f/100 (%s)", hs.Score, hs.Classification), 33, 37, 41)
	}

	pdf.Ln(15)

	// Top Categories Section
	if p := report.Patterns; p != nil && len(p.ByCategory) > 0 {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 8, "Top Spending Categories", "", 1, "L", false, 0, "")

		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.Ln(5)

		// Table header
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(248, 249, 250)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(80, 8, "Category", "1", 0, "L", true, 0, "")
		pdf.CellFormat(45, 8, "Amount", "1", 0, "R", true, 0, "")
		pdf.CellFormat(45, 8, "% of Total", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		limit := len(p.ByCategory)
		if limit > 10 {
			limit = 10
		}
		for _, cat := range p.ByCategory[:limit] {
			pdf.SetTextColor(33, 37, 41)
			pdf.CellFormat(80, 7, string(cat.Category), "1", 0, "L", false, 0, "")
			pdf.CellFormat(45, 7, money(cat.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 7, fmt.Sprintf("%.1f%%", cat.Share*100), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(10)
	}

	// Alerts Section
	if len(report.Alerts) > 0 {
		pdf.SetFont("Arial", "B", 14)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 8, "Alerts", "", 1, "L", false, 0, "")

		pdf.SetDrawColor(200, 200, 200)
		pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
		pdf.Ln(5)

		pdf.SetFont("Arial", "", 10)
		for _, a := range sortedBySeverity(report.Alerts) {
			pdf.SetTextColor(220, 53, 69)
			pdf.CellFormat(25, 6, string(a.Severity), "", 0, "L", false, 0, "")
			pdf.SetTextColor(33, 37, 41)
			pdf.MultiCell(145, 6, fmt.Sprintf("%s: %s", a.Title, a.Message), "", "L", false)
		}
	}

	// Footer
	pdf.SetY(-25)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated by FinLens on %s", time.Now().Format("January 2, 2006")), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}
