package sheets

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/model"
)

func TestNewSyncerDisabledWithoutCredentials(t *testing.T) {
	t.Parallel()

	s, err := NewSyncer(context.Background(), config.SheetsConfig{})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestTransactionRows(t *testing.T) {
	t.Parallel()

	rows := transactionRows([]model.Transaction{{
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "Mercado",
		Amount:      decimal.NewFromFloat(-120.5),
		Category:    model.CategoryMarket,
		CostType:    model.CostTypeVariable,
		MonthKey:    "2024-01",
	}})

	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2024-01-05", rows[1][0])
	assert.Equal(t, "-120.50", rows[1][2])
}

func TestMonthlyRows(t *testing.T) {
	t.Parallel()

	rate := 12.5
	rows := monthlyRows(&model.Insights{
		Monthly: []model.MonthSummary{
			{Month: "2024-01", Income: decimal.NewFromInt(1000), Expense: decimal.NewFromInt(875), Balance: decimal.NewFromInt(125), SavingsRate: &rate},
			{Month: "2024-02", Expense: decimal.NewFromInt(900), Balance: decimal.NewFromInt(-900)},
		},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "12.5", rows[1][4])
	// No income data for the month leaves the rate blank.
	assert.Equal(t, "", rows[2][4])
}
