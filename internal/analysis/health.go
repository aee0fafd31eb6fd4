package analysis

import (
	"fmt"
	"math"

	"github.com/finlens/backend/internal/model"
)

// Component names used in the health score map.
const (
	ComponentSavingsRate     = "savings_rate"
	ComponentSpendingControl = "spending_control"
	ComponentDiversification = "diversification"
	ComponentStability       = "stability"
	ComponentLargeExpenses   = "large_expense_control"
)

// buildHealthScore computes the composite 0-100 score. The first
// component depends on the feed: savings rate when income data exists,
// spending variability otherwise. Each component contributes its full
// weight to the attainable maximum even when too little data exists to
// compute it, so sparse histories score conservatively low.
func buildHealthScore(d *dataset, largeTxQuantile float64) *model.HealthScore {
	if len(d.txs) == 0 {
		return nil
	}

	components := make(map[string]model.ScoreComponent)
	var earned, attainable float64

	// 1. Savings rate (with income) or spending control (expense-only), 30 points.
	if d.hasIncome {
		if rates := d.monthlySavingsRates(); len(rates) > 0 {
			rate := mean(rates)
			var score float64
			switch {
			case rate >= 20:
				score = 30
			case rate >= 10:
				score = 20
			case rate >= 0:
				score = 10
			}
			components[ComponentSavingsRate] = model.ScoreComponent{
				Score:       score,
				MaxScore:    30,
				Value:       rate,
				Description: fmt.Sprintf("Average savings rate: %.1f%%", rate),
			}
			earned += score
		}
	} else {
		series := d.expenseSeries()
		if len(series) >= 2 {
			cv := coefVariation(series)
			score := 10.0
			switch {
			case cv <= 0.15:
				score = 30
			case cv <= 0.25:
				score = 20
			case cv <= 0.35:
				score = 15
			}
			components[ComponentSpendingControl] = model.ScoreComponent{
				Score:       score,
				MaxScore:    30,
				Value:       cv,
				Description: fmt.Sprintf("Monthly spending variability: %.2f (lower is better)", cv),
			}
			earned += score
		} else {
			components[ComponentSpendingControl] = model.ScoreComponent{
				Score:       15,
				MaxScore:    30,
				Description: "Too little data for a variability estimate",
			}
			earned += 15
		}
	}
	attainable += 30

	// 2. Diversification across categories, 20 points. A low Gini over
	// category shares means spending is spread out.
	if len(d.expenses) > 0 {
		shares := categoryShares(d)
		g := gini(shares)
		score := math.Max(0, 20*(1-g))
		components[ComponentDiversification] = model.ScoreComponent{
			Score:       score,
			MaxScore:    20,
			Value:       g,
			Description: fmt.Sprintf("Diversification index: %.1f%%", (1-g)*100),
		}
		earned += score
	}
	attainable += 20

	// 3. Month-to-month stability, 25 points.
	if series := d.expenseSeries(); len(series) >= 3 {
		cv := coefVariation(series)
		score := 10.0
		switch {
		case cv <= 0.10:
			score = 25
		case cv <= 0.20:
			score = 20
		case cv <= 0.30:
			score = 15
		}
		components[ComponentStability] = model.ScoreComponent{
			Score:       score,
			MaxScore:    25,
			Value:       cv,
			Description: fmt.Sprintf("Monthly coefficient of variation: %.2f", cv),
		}
		earned += score
	}
	attainable += 25

	// 4. Large-expense control, 25 points: the share of transactions
	// sitting above the large-expense quantile.
	if len(d.expenses) > 0 {
		amounts := d.expenseAmounts()
		threshold := quantile(amounts, largeTxQuantile)
		large := 0
		for _, a := range amounts {
			if a > threshold {
				large++
			}
		}
		ratio := float64(large) / float64(len(amounts))

		score := 10.0
		switch {
		case ratio <= 0.02:
			score = 25
		case ratio <= 0.05:
			score = 20
		case ratio <= 0.10:
			score = 15
		}
		components[ComponentLargeExpenses] = model.ScoreComponent{
			Score:       score,
			MaxScore:    25,
			Value:       ratio,
			Description: fmt.Sprintf("Large transactions: %.1f%% of the total", ratio*100),
		}
		earned += score
	}
	attainable += 25

	final := 0.0
	if attainable > 0 {
		final = earned / attainable * 100
	}

	return &model.HealthScore{
		Score:          final,
		Components:     components,
		Classification: model.ClassifyHealth(final),
		HasIncomeData:  d.hasIncome,
	}
}

// categoryShares returns each category's fraction of total spend.
func categoryShares(d *dataset) []float64 {
	totals := make(map[model.Category]float64)
	var total float64
	for _, tx := range d.expenses {
		amount := tx.AbsoluteAmount.InexactFloat64()
		totals[tx.Category] += amount
		total += amount
	}
	if total == 0 {
		return nil
	}
	shares := make([]float64, 0, len(totals))
	for _, v := range totals {
		shares = append(shares, v/total)
	}
	return shares
}
