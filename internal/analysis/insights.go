package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
)

// buildSummary computes the headline totals. NetBalance is always
// income minus expense, so a JSON round-trip of the report preserves
// the identity exactly.
func buildSummary(d *dataset) model.Summary {
	var income, expense decimal.Decimal
	for _, tx := range d.txs {
		if tx.IsIncome() {
			income = income.Add(tx.AbsoluteAmount)
		} else {
			expense = expense.Add(tx.AbsoluteAmount)
		}
	}
	return model.Summary{
		TransactionCount: len(d.txs),
		TotalIncome:      income,
		TotalExpense:     expense,
		NetBalance:       income.Sub(expense),
	}
}

// buildInsights aggregates the monthly view. Returns nil when no
// transactions were observed. Trends require at least two months.
func buildInsights(d *dataset) *model.Insights {
	if len(d.allMonths) == 0 {
		return nil
	}

	ins := &model.Insights{HasIncomeData: d.hasIncome}

	var incomeSeries, expenseSeries, balanceSeries []float64
	var sumIncome, sumExpense, sumBalance decimal.Decimal

	for _, m := range d.allMonths {
		income := d.monthIncome[m]
		expense := d.monthExpense[m]
		balance := income.Sub(expense)

		ms := model.MonthSummary{
			Month:   m,
			Income:  income,
			Expense: expense,
			Balance: balance,
		}
		if d.hasIncome && income.IsPositive() {
			rate := balance.Div(income).InexactFloat64() * 100
			ms.SavingsRate = &rate
		}
		ins.Monthly = append(ins.Monthly, ms)

		incomeSeries = append(incomeSeries, income.InexactFloat64())
		expenseSeries = append(expenseSeries, expense.InexactFloat64())
		balanceSeries = append(balanceSeries, balance.InexactFloat64())
		sumIncome = sumIncome.Add(income)
		sumExpense = sumExpense.Add(expense)
		sumBalance = sumBalance.Add(balance)
	}

	n := decimal.NewFromInt(int64(len(d.allMonths)))
	ins.MeanIncome = sumIncome.Div(n)
	ins.MeanExpense = sumExpense.Div(n)
	ins.MeanBalance = sumBalance.Div(n)

	if d.hasIncome {
		if rates := d.monthlySavingsRates(); len(rates) > 0 {
			m := mean(rates)
			ins.MeanSavingsRate = &m
		}
	}

	ins.LargestExpense = highlight(ins.Monthly, func(ms model.MonthSummary) decimal.Decimal { return ms.Expense }, true)
	ins.SmallestExpense = highlight(ins.Monthly, func(ms model.MonthSummary) decimal.Decimal { return ms.Expense }, false)
	if d.hasIncome {
		ins.BestMonth = highlight(ins.Monthly, func(ms model.MonthSummary) decimal.Decimal { return ms.Balance }, true)
		ins.WorstMonth = highlight(ins.Monthly, func(ms model.MonthSummary) decimal.Decimal { return ms.Balance }, false)
	}

	if len(d.allMonths) >= 2 {
		ins.ExpenseTrend = trendPtr(computeTrend(expenseSeries))
		if d.hasIncome {
			ins.IncomeTrend = trendPtr(computeTrend(incomeSeries))
			ins.BalanceTrend = trendPtr(computeTrend(balanceSeries))
		}
	}

	return ins
}

func trendPtr(t model.Trend) *model.Trend { return &t }

// highlight picks the month maximizing (or minimizing) the given value.
// Ties resolve to the earliest month because Monthly is sorted.
func highlight(months []model.MonthSummary, value func(model.MonthSummary) decimal.Decimal, max bool) *model.MonthHighlight {
	if len(months) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(months); i++ {
		v, bv := value(months[i]), value(months[best])
		if (max && v.GreaterThan(bv)) || (!max && v.LessThan(bv)) {
			best = i
		}
	}
	return &model.MonthHighlight{Month: months[best].Month, Amount: value(months[best])}
}
