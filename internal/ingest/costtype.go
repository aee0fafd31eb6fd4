package ingest

import (
	"strings"

	"github.com/finlens/backend/internal/model"
)

// minRecurringMonths is the number of distinct months a description must
// appear in before an expense is treated as a recurring fixed cost.
const minRecurringMonths = 3

// DeriveCostTypes marks each expense fixed or variable. An expense is
// fixed when its description matches a known recurring-vendor pattern
// for its category, or when the same description shows up in at least
// three distinct months. Income rows are left variable; the split only
// matters on the spending side.
func DeriveCostTypes(txs []model.Transaction, fixedPatterns map[model.Category][]string) {
	monthsByDesc := make(map[string]map[string]bool)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Description))
		if monthsByDesc[key] == nil {
			monthsByDesc[key] = make(map[string]bool)
		}
		monthsByDesc[key][tx.MonthKey] = true
	}

	for i := range txs {
		if !txs[i].IsExpense() {
			continue
		}
		desc := strings.ToLower(strings.TrimSpace(txs[i].Description))
		if matchesFixedPattern(desc, txs[i].Category, fixedPatterns) ||
			len(monthsByDesc[desc]) >= minRecurringMonths {
			txs[i].CostType = model.CostTypeFixed
		}
	}
}

func matchesFixedPattern(desc string, category model.Category, patterns map[model.Category][]string) bool {
	for _, p := range patterns[category] {
		if strings.Contains(desc, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
