// Package sheets pushes the latest analysis to a Google Spreadsheet so
// the numbers stay browsable outside the API. Sync is optional: without
// credentials the rest of the system runs unchanged.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

// Tab names written on every sync.
const (
	transactionsSheet = "Transactions"
	monthlySheet      = "Monthly Summary"
)

// Syncer writes the report and transaction list to a spreadsheet.
type Syncer struct {
	spreadsheetID string
	svc           *sheets.Service
}

// NewSyncer builds a syncer from configuration. Returns (nil, nil) when
// credentials or the spreadsheet ID are missing; callers treat a nil
// syncer as the feature being off.
func NewSyncer(ctx context.Context, cfg config.SheetsConfig) (*Syncer, error) {
	if cfg.CredentialsPath == "" || cfg.SpreadsheetID == "" {
		logger.Info("sheet sync disabled, no credentials configured")
		return nil, nil
	}

	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &Syncer{spreadsheetID: cfg.SpreadsheetID, svc: svc}, nil
}

// Sync replaces the transaction and monthly summary tabs with the
// current data.
func (s *Syncer) Sync(ctx context.Context, report *model.Report, txs []model.Transaction) error {
	if err := s.writeTab(ctx, transactionsSheet, transactionRows(txs)); err != nil {
		return fmt.Errorf("syncing transactions tab: %w", err)
	}
	if report.Insights != nil {
		if err := s.writeTab(ctx, monthlySheet, monthlyRows(report.Insights)); err != nil {
			return fmt.Errorf("syncing monthly tab: %w", err)
		}
	}
	logger.Info("sheet sync complete",
		"spreadsheet", s.spreadsheetID, "transactions", len(txs))
	return nil
}

func (s *Syncer) writeTab(ctx context.Context, tab string, rows [][]interface{}) error {
	rangeRef := fmt.Sprintf("%s!A1", tab)

	if _, err := s.svc.Spreadsheets.Values.
		Clear(s.spreadsheetID, rangeRef, &sheets.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clearing %s: %w", tab, err)
	}

	_, err := s.svc.Spreadsheets.Values.
		Update(s.spreadsheetID, rangeRef, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("updating %s: %w", tab, err)
	}
	return nil
}

func transactionRows(txs []model.Transaction) [][]interface{} {
	rows := make([][]interface{}, 0, len(txs)+1)
	rows = append(rows, []interface{}{"Date", "Description", "Amount", "Category", "Cost Type", "Month"})
	for _, tx := range txs {
		rows = append(rows, []interface{}{
			tx.Date.Format(datetime.DateFormat),
			tx.Description,
			tx.Amount.StringFixed(2),
			string(tx.Category),
			string(tx.CostType),
			tx.MonthKey,
		})
	}
	return rows
}

func monthlyRows(ins *model.Insights) [][]interface{} {
	rows := make([][]interface{}, 0, len(ins.Monthly)+1)
	rows = append(rows, []interface{}{"Month", "Income", "Expense", "Balance", "Savings Rate %"})
	for _, m := range ins.Monthly {
		rate := interface{}("")
		if m.SavingsRate != nil {
			rate = fmt.Sprintf("%.1f", *m.SavingsRate)
		}
		rows = append(rows, []interface{}{
			m.Month,
			m.Income.StringFixed(2),
			m.Expense.StringFixed(2),
			m.Balance.StringFixed(2),
			rate,
		})
	}
	return rows
}
