package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

// topMerchantsInPatterns bounds the merchant breakdown in the patterns
// section.
const topMerchantsInPatterns = 10

// buildPatterns computes the dimensional expense breakdowns. Returns
// nil when there are no expenses at all.
func buildPatterns(d *dataset) *model.Patterns {
	if len(d.expenses) == 0 {
		return nil
	}

	p := &model.Patterns{
		ByWeekday:   weekdayTotals(d),
		Seasonality: map[string]decimal.Decimal{},
	}

	// Top spending weekday.
	var topWeekday string
	var topAmount decimal.Decimal
	for _, day := range weekdayOrder {
		if total, ok := p.ByWeekday[day]; ok && total.GreaterThan(topAmount) {
			topWeekday = day
			topAmount = total
		}
	}
	p.TopWeekday = topWeekday

	p.ByCategory = categoryStats(d)
	p.TopMerchants = merchantStats(d)

	// Seasonality by calendar month, aggregated across years.
	monthTotals := make(map[time.Month]decimal.Decimal)
	for _, tx := range d.expenses {
		monthTotals[tx.Date.Month()] = monthTotals[tx.Date.Month()].Add(tx.AbsoluteAmount)
	}
	var costliest time.Month
	var costliestTotal decimal.Decimal
	for m := time.January; m <= time.December; m++ {
		total, ok := monthTotals[m]
		if !ok {
			continue
		}
		p.Seasonality[m.String()] = total
		if total.GreaterThan(costliestTotal) {
			costliest = m
			costliestTotal = total
		}
	}
	if costliest != 0 {
		p.CostliestMonth = costliest.String()
	}

	p.FixedVsVariable = costTypeStats(d)
	return p
}

var weekdayOrder = []string{
	time.Monday.String(),
	time.Tuesday.String(),
	time.Wednesday.String(),
	time.Thursday.String(),
	time.Friday.String(),
	time.Saturday.String(),
	time.Sunday.String(),
}

func weekdayTotals(d *dataset) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range d.expenses {
		totals[tx.Weekday] = totals[tx.Weekday].Add(tx.AbsoluteAmount)
	}
	return totals
}

// categoryStats summarizes each category, sorted by total descending.
// CV measures how erratic individual purchase amounts are within the
// category.
func categoryStats(d *dataset) []model.CategoryStat {
	amounts := make(map[model.Category][]float64)
	totals := make(map[model.Category]decimal.Decimal)
	var grandTotal decimal.Decimal
	for _, tx := range d.expenses {
		amounts[tx.Category] = append(amounts[tx.Category], tx.AbsoluteAmount.InexactFloat64())
		totals[tx.Category] = totals[tx.Category].Add(tx.AbsoluteAmount)
		grandTotal = grandTotal.Add(tx.AbsoluteAmount)
	}

	stats := make([]model.CategoryStat, 0, len(totals))
	for cat, total := range totals {
		n := len(amounts[cat])
		share := 0.0
		if grandTotal.IsPositive() {
			share = total.Div(grandTotal).InexactFloat64()
		}
		stats = append(stats, model.CategoryStat{
			Category: cat,
			Total:    total,
			Mean:     total.Div(decimal.NewFromInt(int64(n))),
			Count:    n,
			Share:    share,
			CV:       coefVariation(amounts[cat]),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if !stats[i].Total.Equal(stats[j].Total) {
			return stats[i].Total.GreaterThan(stats[j].Total)
		}
		return stats[i].Category < stats[j].Category
	})
	return stats
}

// merchantStats lists the most frequent merchants by transaction count.
func merchantStats(d *dataset) []model.MerchantStat {
	totals := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, tx := range d.expenses {
		totals[tx.Description] = totals[tx.Description].Add(tx.AbsoluteAmount)
		counts[tx.Description]++
	}

	stats := make([]model.MerchantStat, 0, len(totals))
	for merchant, total := range totals {
		n := counts[merchant]
		stats = append(stats, model.MerchantStat{
			Merchant: merchant,
			Total:    total,
			Mean:     total.Div(decimal.NewFromInt(int64(n))),
			Count:    n,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Merchant < stats[j].Merchant
	})
	if len(stats) > topMerchantsInPatterns {
		stats = stats[:topMerchantsInPatterns]
	}
	return stats
}

func costTypeStats(d *dataset) map[model.CostType]model.CostTypeStat {
	totals := make(map[model.CostType]decimal.Decimal)
	counts := make(map[model.CostType]int)
	for _, tx := range d.expenses {
		totals[tx.CostType] = totals[tx.CostType].Add(tx.AbsoluteAmount)
		counts[tx.CostType]++
	}

	out := make(map[model.CostType]model.CostTypeStat, len(totals))
	for ct, total := range totals {
		out[ct] = model.CostTypeStat{
			Total: total,
			Mean:  total.Div(decimal.NewFromInt(int64(counts[ct]))),
			Count: counts[ct],
		}
	}
	return out
}

// period derives the analyzed window from the earliest and latest dates.
func period(txs []model.Transaction) model.Period {
	if len(txs) == 0 {
		return model.Period{}
	}
	start, end := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(start) {
			start = tx.Date
		}
		if tx.Date.After(end) {
			end = tx.Date
		}
	}
	return model.Period{Start: start, End: end, Days: datetime.DaysBetween(start, end)}
}
