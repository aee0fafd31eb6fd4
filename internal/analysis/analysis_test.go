package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

func tx(date, desc string, amount float64, cat model.Category) model.Transaction {
	d, err := datetime.ParseStatementDate(date)
	if err != nil {
		panic(err)
	}
	dec := decimal.NewFromFloat(amount)
	direction := model.DirectionExpense
	if dec.IsPositive() {
		direction = model.DirectionIncome
	}
	return model.Transaction{
		Date:           d,
		Description:    desc,
		Amount:         dec,
		AbsoluteAmount: dec.Abs(),
		Direction:      direction,
		Category:       cat,
		CostType:       model.CostTypeVariable,
		Year:           d.Year(),
		MonthKey:       datetime.MonthKey(d),
		Weekday:        d.Weekday().String(),
	}
}

func monthlyExpenses(amounts ...float64) []model.Transaction {
	txs := make([]model.Transaction, 0, len(amounts))
	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i, a := range amounts {
		d := base.AddDate(0, i, 0)
		txs = append(txs, tx(d.Format(datetime.DateFormat), "Mercado Central", -a, model.CategoryMarket))
	}
	return txs
}

func TestQuantileLinearInterpolation(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 3.85, quantile([]float64{1, 2, 3, 4}, 0.95), 1e-9)
	assert.InDelta(t, 2.5, quantile([]float64{1, 2, 3, 4}, 0.5), 1e-9)
	assert.InDelta(t, 4, quantile([]float64{1, 2, 3, 4}, 1), 1e-9)
	assert.InDelta(t, 7, quantile([]float64{7}, 0.95), 1e-9)
}

func TestSampleStdDev(t *testing.T) {
	t.Parallel()

	// n-1 denominator: stddev of {2,4,4,4,5,5,7,9} is sqrt(32/7).
	assert.InDelta(t, 2.13809, sampleStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-4)
	assert.Zero(t, sampleStdDev([]float64{5}))
}

func TestGini(t *testing.T) {
	t.Parallel()

	assert.Zero(t, gini([]float64{1, 1, 1, 1}), "even distribution")
	assert.InDelta(t, 0.75, gini([]float64{0, 0, 0, 1}), 1e-9, "single dominant bucket")

	// Monotonicity: concentrating the same total raises the index.
	even := gini([]float64{25, 25, 25, 25})
	skewed := gini([]float64{10, 10, 10, 70})
	extreme := gini([]float64{1, 1, 1, 97})
	assert.Less(t, even, skewed)
	assert.Less(t, skewed, extreme)
}

func TestComputeTrend(t *testing.T) {
	t.Parallel()

	trend := computeTrend([]float64{200, 220, 210, 230})
	assert.Equal(t, model.TrendIncreasing, trend.Direction)
	assert.InDelta(t, 8.0, trend.Slope, 1e-9)
	assert.InDelta(t, 15.0, trend.ChangePct, 1e-9)

	down := computeTrend([]float64{100, 50})
	assert.Equal(t, model.TrendDecreasing, down.Direction)
	assert.InDelta(t, -50.0, down.ChangePct, 1e-9)

	flat := computeTrend([]float64{80})
	assert.Equal(t, model.TrendStable, flat.Direction)
	assert.Zero(t, flat.ChangePct)

	// First value zero: change percentage is defined as zero.
	fromZero := computeTrend([]float64{0, 100})
	assert.Equal(t, model.TrendIncreasing, fromZero.Direction)
	assert.Zero(t, fromZero.ChangePct)
}

func TestExpenseSpikeDetection(t *testing.T) {
	t.Parallel()

	det := NewDetector(DefaultThresholds())

	// [100,100,100,100,1000]: limit is about 883.7, the last month alerts.
	d := newDataset(monthlyExpenses(100, 100, 100, 100, 1000))
	alerts := det.expenseSpikes(d)
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertExpenseSpike, alerts[0].Type)
	assert.Equal(t, model.SeverityHigh, alerts[0].Severity)
	assert.Equal(t, "2024-05", alerts[0].Date.Format(datetime.MonthKeyFormat))
}

func TestExpenseSpikeBoundaryDoesNotAlert(t *testing.T) {
	t.Parallel()

	// [100,100,100,1000]: mean 325, stddev 450, so the outlier sits
	// exactly on mean + 1.5*stddev. The comparison is strict.
	det := NewDetector(DefaultThresholds())
	d := newDataset(monthlyExpenses(100, 100, 100, 1000))
	assert.Empty(t, det.expenseSpikes(d))
}

func TestExpenseSpikeNeedsThreeMonths(t *testing.T) {
	t.Parallel()

	det := NewDetector(DefaultThresholds())
	d := newDataset(monthlyExpenses(100, 1000))
	assert.Empty(t, det.expenseSpikes(d))
}

func TestCategoryConcentration(t *testing.T) {
	t.Parallel()

	det := NewDetector(DefaultThresholds())
	txs := []model.Transaction{
		tx("2024-01-05", "Restaurante", -100, model.CategoryFood),
		tx("2024-01-10", "Supermercado", -50, model.CategoryMarket),
		tx("2024-01-15", "Aluguel", -350, model.CategoryHousing),
	}

	alerts := det.categoryConcentration(newDataset(txs))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.CategoryHousing, alerts[0].Category)
	assert.Equal(t, model.SeverityMedium, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "70.0%")
}

func TestLowSavingsAndDeficit(t *testing.T) {
	t.Parallel()

	det := NewDetector(DefaultThresholds())
	txs := []model.Transaction{
		tx("2024-01-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-01-15", "Mercado", -900, model.CategoryMarket),
		tx("2024-02-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-02-15", "Mercado", -1100, model.CategoryMarket),
		tx("2024-03-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-03-15", "Mercado", -1000, model.CategoryMarket),
	}

	alerts := det.lowSavings(newDataset(txs))
	require.Len(t, alerts, 2)

	// January saves exactly 10% and does not alert. February runs a
	// deficit and escalates to critical; March saves 0%.
	assert.Equal(t, model.SeverityCritical, alerts[0].Severity)
	assert.InDelta(t, -10.0, *alerts[0].Value, 1e-9)
	assert.Equal(t, model.SeverityMedium, alerts[1].Severity)
	assert.InDelta(t, 0.0, *alerts[1].Value, 1e-9)
}

func TestMerchantGrowth(t *testing.T) {
	t.Parallel()

	det := NewDetector(DefaultThresholds())
	txs := []model.Transaction{
		tx("2024-01-10", "IFood", -100, model.CategoryFood),
		tx("2024-02-10", "IFood", -150, model.CategoryFood),
		tx("2024-03-10", "IFood", -200, model.CategoryFood),
		tx("2024-01-12", "Padaria", -50, model.CategoryFood),
		tx("2024-02-12", "Padaria", -50, model.CategoryFood),
		tx("2024-03-12", "Padaria", -50, model.CategoryFood),
	}

	alerts := det.merchantGrowth(newDataset(txs))
	require.Len(t, alerts, 1)
	assert.Equal(t, model.AlertMerchantGrowth, alerts[0].Type)
	assert.Equal(t, model.SeverityLow, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "IFood")
	assert.InDelta(t, 100.0, *alerts[0].Value, 1e-9)
}

func TestHealthScoreBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		txs  []model.Transaction
	}{
		{"expense only", monthlyExpenses(100, 110, 105, 95)},
		{"single month", monthlyExpenses(500)},
		{"with income", []model.Transaction{
			tx("2024-01-01", "Salario", 5000, model.CategoryIncome),
			tx("2024-01-10", "Mercado", -2000, model.CategoryMarket),
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hs := buildHealthScore(newDataset(tt.txs), 0.95)
			require.NotNil(t, hs)
			assert.GreaterOrEqual(t, hs.Score, 0.0)
			assert.LessOrEqual(t, hs.Score, 100.0)
			assert.Equal(t, model.ClassifyHealth(hs.Score), hs.Classification)
			for name, comp := range hs.Components {
				assert.LessOrEqualf(t, comp.Score, comp.MaxScore, "component %s", name)
				assert.GreaterOrEqualf(t, comp.Score, 0.0, "component %s", name)
			}
		})
	}
}

func TestHealthScoreComponentSelection(t *testing.T) {
	t.Parallel()

	// Expense-only data scores spending control instead of savings rate.
	hs := buildHealthScore(newDataset(monthlyExpenses(100, 100, 100)), 0.95)
	require.NotNil(t, hs)
	assert.False(t, hs.HasIncomeData)
	assert.Contains(t, hs.Components, ComponentSpendingControl)
	assert.NotContains(t, hs.Components, ComponentSavingsRate)

	withIncome := append(monthlyExpenses(100, 100, 100),
		tx("2024-01-01", "Salario", 1000, model.CategoryIncome))
	hs = buildHealthScore(newDataset(withIncome), 0.95)
	require.NotNil(t, hs)
	assert.True(t, hs.HasIncomeData)
	assert.Contains(t, hs.Components, ComponentSavingsRate)
	assert.NotContains(t, hs.Components, ComponentSpendingControl)
}

func TestHealthScoreSavingsBands(t *testing.T) {
	t.Parallel()

	// 25% savings each month earns the full 30 points.
	txs := []model.Transaction{
		tx("2024-01-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-01-15", "Mercado", -750, model.CategoryMarket),
		tx("2024-02-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-02-15", "Mercado", -750, model.CategoryMarket),
	}
	hs := buildHealthScore(newDataset(txs), 0.95)
	require.NotNil(t, hs)
	comp := hs.Components[ComponentSavingsRate]
	assert.InDelta(t, 30.0, comp.Score, 1e-9)
	assert.InDelta(t, 25.0, comp.Value, 1e-9)
}

func TestPredictions(t *testing.T) {
	t.Parallel()

	p := buildPredictions(newDataset(monthlyExpenses(200, 220, 210, 230)))
	require.NotNil(t, p)

	require.NotNil(t, p.NextMonthAverage)
	assert.InDelta(t, 220.0, p.NextMonthAverage.InexactFloat64(), 1e-9)

	// Least-squares fit: slope 8, intercept 203, forecast 8*4+203.
	require.NotNil(t, p.NextMonthTrend)
	assert.InDelta(t, 235.0, p.NextMonthTrend.InexactFloat64(), 1e-6)

	require.NotNil(t, p.ExpenseTrend)
	assert.Equal(t, model.TrendIncreasing, p.ExpenseTrend.Direction)

	// Only one January observed, so no seasonal estimate.
	assert.Nil(t, p.NextMonthSeasonal)

	require.Contains(t, p.ByCategory, model.CategoryMarket)
	assert.InDelta(t, 220.0, p.ByCategory[model.CategoryMarket].InexactFloat64(), 1e-9)
}

func TestPredictionsInsufficientData(t *testing.T) {
	t.Parallel()

	p := buildPredictions(newDataset(monthlyExpenses(200, 220)))
	if p != nil {
		assert.Nil(t, p.NextMonthAverage)
		assert.Nil(t, p.NextMonthTrend)
	}
}

func TestSeasonalPrediction(t *testing.T) {
	t.Parallel()

	var txs []model.Transaction
	for _, d := range []struct {
		date   string
		amount float64
	}{
		{"2023-01-15", 300},
		{"2023-02-15", 100},
		{"2023-12-15", 150},
		{"2024-01-15", 500},
	} {
		txs = append(txs, tx(d.date, "Mercado", -d.amount, model.CategoryMarket))
	}

	p := buildPredictions(newDataset(txs))
	require.NotNil(t, p)
	require.NotNil(t, p.NextMonthSeasonal)
	// Mean of the two observed Januaries.
	assert.InDelta(t, 400.0, p.NextMonthSeasonal.InexactFloat64(), 1e-9)
}

func TestSeasonalPredictionWithTwoMonthHistory(t *testing.T) {
	t.Parallel()

	// Two Januaries a year apart: too short for the moving average, but
	// enough for the seasonal estimate.
	txs := []model.Transaction{
		tx("2023-01-15", "Mercado", -300, model.CategoryMarket),
		tx("2024-01-15", "Mercado", -500, model.CategoryMarket),
	}

	p := buildPredictions(newDataset(txs))
	require.NotNil(t, p)
	assert.Nil(t, p.NextMonthAverage)
	require.NotNil(t, p.NextMonthSeasonal)
	assert.InDelta(t, 400.0, p.NextMonthSeasonal.InexactFloat64(), 1e-9)
}

func TestAssembleEmptyIsError(t *testing.T) {
	t.Parallel()

	_, err := NewAssembler(DefaultThresholds()).Assemble(nil)
	assert.ErrorIs(t, err, apperror.ErrNoData)
}

func TestAssembleReport(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("2024-01-01", "Salario", 5000, model.CategoryIncome),
		tx("2024-01-10", "Mercado", -1200, model.CategoryMarket),
		tx("2024-02-01", "Salario", 5000, model.CategoryIncome),
		tx("2024-02-12", "Mercado", -1100, model.CategoryMarket),
		tx("2024-03-01", "Salario", 5000, model.CategoryIncome),
		tx("2024-03-08", "Mercado", -1250, model.CategoryMarket),
	}

	report, err := NewAssembler(DefaultThresholds()).Assemble(txs)
	require.NoError(t, err)

	assert.Equal(t, 6, report.Summary.TransactionCount)
	assert.True(t, report.Summary.NetBalance.Equal(
		report.Summary.TotalIncome.Sub(report.Summary.TotalExpense)),
		"net balance identity")

	require.NotNil(t, report.Insights)
	assert.True(t, report.Insights.HasIncomeData)
	assert.Len(t, report.Insights.Monthly, 3)

	require.NotNil(t, report.HealthScore)
	require.NotNil(t, report.Patterns)
	require.NotNil(t, report.Predictions)
	assert.NotNil(t, report.Alerts)

	assert.Equal(t, "2024-01-01", report.Period.Start.Format(datetime.DateFormat))
	assert.Equal(t, "2024-03-08", report.Period.End.Format(datetime.DateFormat))
}

func TestInsightsHighlights(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("2024-01-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-01-15", "Mercado", -900, model.CategoryMarket),
		tx("2024-02-01", "Salario", 1000, model.CategoryIncome),
		tx("2024-02-15", "Mercado", -400, model.CategoryMarket),
	}

	ins := buildInsights(newDataset(txs))
	require.NotNil(t, ins)

	require.NotNil(t, ins.BestMonth)
	assert.Equal(t, "2024-02", ins.BestMonth.Month)
	require.NotNil(t, ins.WorstMonth)
	assert.Equal(t, "2024-01", ins.WorstMonth.Month)
	require.NotNil(t, ins.LargestExpense)
	assert.Equal(t, "2024-01", ins.LargestExpense.Month)

	require.NotNil(t, ins.Monthly[0].SavingsRate)
	assert.InDelta(t, 10.0, *ins.Monthly[0].SavingsRate, 1e-9)
	assert.InDelta(t, 60.0, *ins.Monthly[1].SavingsRate, 1e-9)
}

func TestPatterns(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("2024-01-05", "Mercado A", -100, model.CategoryMarket), // Friday
		tx("2024-01-06", "Mercado A", -300, model.CategoryMarket), // Saturday
		tx("2024-01-06", "Restaurante B", -50, model.CategoryFood),
	}
	fixed := tx("2024-01-10", "Aluguel", -800, model.CategoryHousing)
	fixed.CostType = model.CostTypeFixed
	txs = append(txs, fixed)

	p := buildPatterns(newDataset(txs))
	require.NotNil(t, p)

	// The 800 rent on Wednesday Jan 10 dominates the weekday totals.
	assert.Equal(t, "Wednesday", p.TopWeekday)
	require.NotEmpty(t, p.ByCategory)
	assert.Equal(t, model.CategoryHousing, p.ByCategory[0].Category)
	assert.InDelta(t, 800.0/1250.0, p.ByCategory[0].Share, 1e-9)

	require.NotEmpty(t, p.TopMerchants)
	assert.Equal(t, "Mercado A", p.TopMerchants[0].Merchant)
	assert.Equal(t, 2, p.TopMerchants[0].Count)

	assert.Equal(t, "January", p.CostliestMonth)
	assert.Equal(t, 1, p.FixedVsVariable[model.CostTypeFixed].Count)
	assert.Equal(t, 3, p.FixedVsVariable[model.CostTypeVariable].Count)
}
