package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
)

// dataset is the shared pre-aggregation every analyzer works from:
// expense rows split out, and income/expense totals per month.
type dataset struct {
	txs      []model.Transaction
	expenses []model.Transaction

	// allMonths covers every month with any activity; expenseMonths only
	// months with at least one expense row. Both sorted ascending.
	allMonths     []string
	expenseMonths []string

	monthIncome  map[string]decimal.Decimal
	monthExpense map[string]decimal.Decimal

	hasIncome bool
}

func newDataset(txs []model.Transaction) *dataset {
	d := &dataset{
		txs:          txs,
		monthIncome:  make(map[string]decimal.Decimal),
		monthExpense: make(map[string]decimal.Decimal),
	}

	monthSeen := make(map[string]bool)
	expenseSeen := make(map[string]bool)
	for _, tx := range txs {
		if !monthSeen[tx.MonthKey] {
			monthSeen[tx.MonthKey] = true
			d.allMonths = append(d.allMonths, tx.MonthKey)
		}
		if tx.IsIncome() {
			d.hasIncome = true
			d.monthIncome[tx.MonthKey] = d.monthIncome[tx.MonthKey].Add(tx.AbsoluteAmount)
			continue
		}
		d.expenses = append(d.expenses, tx)
		d.monthExpense[tx.MonthKey] = d.monthExpense[tx.MonthKey].Add(tx.AbsoluteAmount)
		if !expenseSeen[tx.MonthKey] {
			expenseSeen[tx.MonthKey] = true
			d.expenseMonths = append(d.expenseMonths, tx.MonthKey)
		}
	}
	sort.Strings(d.allMonths)
	sort.Strings(d.expenseMonths)
	return d
}

// expenseSeries returns the monthly expense totals over expenseMonths.
func (d *dataset) expenseSeries() []float64 {
	out := make([]float64, len(d.expenseMonths))
	for i, m := range d.expenseMonths {
		out[i] = d.monthExpense[m].InexactFloat64()
	}
	return out
}

// expenseAmounts returns the absolute amount of every expense row.
func (d *dataset) expenseAmounts() []float64 {
	out := make([]float64, len(d.expenses))
	for i, tx := range d.expenses {
		out[i] = tx.AbsoluteAmount.InexactFloat64()
	}
	return out
}

// monthlySavingsRates returns the savings rate per month, skipping
// months without income.
func (d *dataset) monthlySavingsRates() []float64 {
	var rates []float64
	for _, m := range d.allMonths {
		income := d.monthIncome[m]
		if !income.IsPositive() {
			continue
		}
		balance := income.Sub(d.monthExpense[m])
		rates = append(rates, balance.Div(income).InexactFloat64()*100)
	}
	return rates
}
