package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/model"
)

func sampleReport() *model.Report {
	value := 1200.0
	return &model.Report{
		GeneratedAt: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		Period: model.Period{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			Days:  90,
		},
		Summary: model.Summary{
			TransactionCount: 42,
			TotalIncome:      decimal.NewFromInt(15000),
			TotalExpense:     decimal.NewFromInt(12000),
			NetBalance:       decimal.NewFromInt(3000),
		},
		Alerts: []model.Alert{
			{Type: model.AlertLargePurchase, Severity: model.SeverityMedium, Title: "Large purchase", Message: "big one", Value: &value},
			{Type: model.AlertLowSavings, Severity: model.SeverityCritical, Title: "Monthly deficit", Message: "deficit"},
		},
		Patterns: &model.Patterns{
			ByCategory: []model.CategoryStat{
				{Category: model.CategoryHousing, Total: decimal.NewFromInt(6000), Mean: decimal.NewFromInt(2000), Count: 3, Share: 0.5},
			},
		},
		HealthScore: &model.HealthScore{
			Score:          72.5,
			Classification: model.HealthGood,
			Components:     map[string]model.ScoreComponent{},
			HasIncomeData:  true,
		},
	}
}

func TestReportJSONRoundTrip(t *testing.T) {
	t.Parallel()

	data, err := ReportJSON(sampleReport())
	require.NoError(t, err)

	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))

	// The balance identity survives serialization.
	assert.True(t, decoded.Summary.NetBalance.Equal(
		decoded.Summary.TotalIncome.Sub(decoded.Summary.TotalExpense)))
	assert.Equal(t, 42, decoded.Summary.TransactionCount)
	require.NotNil(t, decoded.HealthScore)
	assert.Equal(t, model.HealthGood, decoded.HealthScore.Classification)
}

func TestTransactionsCSV(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		{
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "Mercado, Central", // embedded comma must be quoted
			Amount:      decimal.NewFromFloat(-120.5),
			Direction:   model.DirectionExpense,
			Category:    model.CategoryMarket,
			CostType:    model.CostTypeVariable,
			MonthKey:    "2024-01",
			SourceFile:  "extrato.csv",
		},
	}

	data, err := TransactionsCSV(txs)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Date", records[0][0])
	assert.Equal(t, "Mercado, Central", records[1][1])
	assert.Equal(t, "-120.50", records[1][2])
	assert.Equal(t, "Market", records[1][4])
}

func TestReportText(t *testing.T) {
	t.Parallel()

	text := ReportText(sampleReport())

	assert.Contains(t, text, "Transactions: 42")
	assert.Contains(t, text, "R$15000.00")
	assert.Contains(t, text, "Health score: 72.5/100 (Good)")
	assert.Contains(t, text, "Housing")

	// Critical alerts are listed before medium ones.
	criticalIdx := strings.Index(text, "Monthly deficit")
	mediumIdx := strings.Index(text, "Large purchase")
	require.GreaterOrEqual(t, criticalIdx, 0)
	require.GreaterOrEqual(t, mediumIdx, 0)
	assert.Less(t, criticalIdx, mediumIdx)
}

func TestReportPDF(t *testing.T) {
	t.Parallel()

	data, err := ReportPDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Greater(t, len(data), 500)
}
