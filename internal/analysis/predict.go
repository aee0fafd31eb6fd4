package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

// topMerchantCount bounds the per-merchant forecast list.
const topMerchantCount = 5

// buildPredictions estimates next-month spend. Every estimator has a
// minimum-sample requirement; when unmet the field stays nil rather
// than defaulting to zero. Returns nil when no estimator could run.
func buildPredictions(d *dataset) *model.Predictions {
	p := &model.Predictions{}

	series := d.expenseSeries()
	if len(series) >= 3 {
		// Simple 3-month moving average.
		ma := mean(series[len(series)-3:])
		p.NextMonthAverage = decimalPtr(ma)

		// Linear trend extrapolated one step past the observed window.
		slope, intercept := leastSquares(series)
		p.NextMonthTrend = decimalPtr(slope*float64(len(series)) + intercept)

		p.ExpenseTrend = trendPtr(computeTrend(series))
	}

	// Seasonal estimate: mean of every observed year's value for the
	// same calendar month as the latest one. Needs at least two such
	// months, so it can run on histories too short for the moving
	// average (two Januaries a year apart, say).
	if len(series) >= 2 {
		if seasonal, ok := seasonalEstimate(d.expenseMonths, series); ok {
			p.NextMonthSeasonal = decimalPtr(seasonal)
		}
	}

	p.ByCategory = categoryForecasts(d)
	p.ByMerchant = merchantForecasts(d)

	if p.NextMonthAverage == nil && p.NextMonthSeasonal == nil &&
		len(p.ByCategory) == 0 && len(p.ByMerchant) == 0 {
		return nil
	}
	return p
}

func decimalPtr(v float64) *decimal.Decimal {
	dec := decimal.NewFromFloat(v)
	return &dec
}

// seasonalEstimate averages the totals of every month sharing the
// latest month's calendar position.
func seasonalEstimate(months []string, series []float64) (float64, bool) {
	last, err := datetime.ParseMonthKey(months[len(months)-1])
	if err != nil {
		return 0, false
	}

	var same []float64
	for i, key := range months {
		t, err := datetime.ParseMonthKey(key)
		if err != nil {
			continue
		}
		if t.Month() == last.Month() {
			same = append(same, series[i])
		}
	}
	if len(same) < 2 {
		return 0, false
	}
	return mean(same), true
}

// categoryForecasts returns a 3-month moving average per category with
// at least three active months.
func categoryForecasts(d *dataset) map[model.Category]decimal.Decimal {
	byCat := make(map[model.Category]map[string]float64)
	for _, tx := range d.expenses {
		if byCat[tx.Category] == nil {
			byCat[tx.Category] = make(map[string]float64)
		}
		byCat[tx.Category][tx.MonthKey] += tx.AbsoluteAmount.InexactFloat64()
	}

	out := make(map[model.Category]decimal.Decimal)
	for cat, monthly := range byCat {
		series := sortedSeries(monthly)
		if len(series) < 3 {
			continue
		}
		out[cat] = decimal.NewFromFloat(mean(series[len(series)-3:]))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// merchantForecasts returns a 3-month moving average for the most
// frequent merchants with at least three active months.
func merchantForecasts(d *dataset) map[string]decimal.Decimal {
	counts := make(map[string]int)
	byMerchant := make(map[string]map[string]float64)
	for _, tx := range d.expenses {
		counts[tx.Description]++
		if byMerchant[tx.Description] == nil {
			byMerchant[tx.Description] = make(map[string]float64)
		}
		byMerchant[tx.Description][tx.MonthKey] += tx.AbsoluteAmount.InexactFloat64()
	}

	merchants := make([]string, 0, len(counts))
	for m := range counts {
		merchants = append(merchants, m)
	}
	sort.Slice(merchants, func(i, j int) bool {
		if counts[merchants[i]] != counts[merchants[j]] {
			return counts[merchants[i]] > counts[merchants[j]]
		}
		return merchants[i] < merchants[j]
	})
	if len(merchants) > topMerchantCount {
		merchants = merchants[:topMerchantCount]
	}

	out := make(map[string]decimal.Decimal)
	for _, m := range merchants {
		series := sortedSeries(byMerchant[m])
		if len(series) < 3 {
			continue
		}
		out[m] = decimal.NewFromFloat(mean(series[len(series)-3:]))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedSeries(monthly map[string]float64) []float64 {
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)
	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = monthly[m]
	}
	return series
}
