package analysis

import (
	"fmt"
	"sort"

	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/datetime"
)

// Thresholds tunes the anomaly checks. Zero values are never meaningful;
// construct with DefaultThresholds and override fields as needed.
type Thresholds struct {
	// SpikeStdDevs is how many standard deviations above the monthly
	// mean an expense month must land to raise a spike alert.
	SpikeStdDevs float64

	// LargeTxQuantile marks transactions above this expense quantile.
	LargeTxQuantile float64

	// ConcentrationShare is the fraction of total spend above which a
	// single category raises an overspending alert.
	ConcentrationShare float64

	// LowSavingsRatePct is the monthly savings rate, in percent, below
	// which a low-savings alert fires.
	LowSavingsRatePct float64

	// MerchantGrowthPct is the minimum first-to-last percentage change
	// for a growing-merchant alert.
	MerchantGrowthPct float64

	// MinMonths is the sample floor for the statistical checks.
	MinMonths int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SpikeStdDevs:       1.5,
		LargeTxQuantile:    0.95,
		ConcentrationShare: 0.30,
		LowSavingsRatePct:  10,
		MerchantGrowthPct:  50,
		MinMonths:          3,
	}
}

// Detector runs the anomaly checks over a dataset.
type Detector struct {
	t Thresholds
}

func NewDetector(t Thresholds) *Detector {
	return &Detector{t: t}
}

// detect runs every check and concatenates the alerts. The slice is
// non-nil whenever expenses exist, so an empty result still marshals as
// a list. Ordering follows check order; consumers sort by severity.
func (det *Detector) detect(d *dataset) []model.Alert {
	if len(d.expenses) == 0 {
		return nil
	}

	alerts := []model.Alert{}
	alerts = append(alerts, det.expenseSpikes(d)...)
	alerts = append(alerts, det.largeTransactions(d)...)
	alerts = append(alerts, det.categoryConcentration(d)...)
	alerts = append(alerts, det.lowSavings(d)...)
	alerts = append(alerts, det.merchantGrowth(d)...)
	return alerts
}

// expenseSpikes flags months strictly above mean + SpikeStdDevs*stddev.
// A month sitting exactly on the boundary does not alert.
func (det *Detector) expenseSpikes(d *dataset) []model.Alert {
	series := d.expenseSeries()
	if len(series) < det.t.MinMonths {
		return nil
	}

	m := mean(series)
	sd := sampleStdDev(series)
	limit := m + det.t.SpikeStdDevs*sd

	var alerts []model.Alert
	for i, expense := range series {
		if expense <= limit {
			continue
		}
		month := d.expenseMonths[i]
		date, _ := datetime.ParseMonthKey(month)
		value := expense
		alerts = append(alerts, model.Alert{
			Type:     model.AlertExpenseSpike,
			Severity: model.SeverityHigh,
			Title:    "Elevated monthly spending",
			Message:  fmt.Sprintf("Spending in %s was %.1f%% above the monthly average", month, (expense/m-1)*100),
			Value:    &value,
			Date:     &date,
		})
	}
	return alerts
}

// largeTransactions flags individual expenses above the configured
// quantile of all expense amounts.
func (det *Detector) largeTransactions(d *dataset) []model.Alert {
	threshold := quantile(d.expenseAmounts(), det.t.LargeTxQuantile)

	var alerts []model.Alert
	for _, tx := range d.expenses {
		amount := tx.AbsoluteAmount.InexactFloat64()
		if amount <= threshold {
			continue
		}
		value := amount
		date := tx.Date
		alerts = append(alerts, model.Alert{
			Type:     model.AlertLargePurchase,
			Severity: model.SeverityMedium,
			Title:    "Large purchase",
			Message:  fmt.Sprintf("Purchase of %.2f at %s is among the top %.0f%% of expenses", amount, truncateDesc(tx.Description), (1-det.t.LargeTxQuantile)*100),
			Value:    &value,
			Category: tx.Category,
			Date:     &date,
		})
	}
	return alerts
}

// categoryConcentration flags categories whose share of total spend
// exceeds the concentration threshold.
func (det *Detector) categoryConcentration(d *dataset) []model.Alert {
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

	cats := make([]model.Category, 0, len(totals))
	for c := range totals {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	var alerts []model.Alert
	for _, c := range cats {
		share := totals[c] / total
		if share <= det.t.ConcentrationShare {
			continue
		}
		value := totals[c]
		alerts = append(alerts, model.Alert{
			Type:     model.AlertCategoryShare,
			Severity: model.SeverityMedium,
			Title:    "Category dominates spending",
			Message:  fmt.Sprintf("%s accounts for %.1f%% of total spending", c, share*100),
			Value:    &value,
			Category: c,
		})
	}
	return alerts
}

// lowSavings flags months with a savings rate below the threshold.
// A negative rate means a deficit and escalates to critical.
func (det *Detector) lowSavings(d *dataset) []model.Alert {
	if !d.hasIncome {
		return nil
	}

	var alerts []model.Alert
	for _, month := range d.allMonths {
		income := d.monthIncome[month]
		if !income.IsPositive() {
			continue
		}
		rate := income.Sub(d.monthExpense[month]).Div(income).InexactFloat64() * 100
		if rate >= det.t.LowSavingsRatePct {
			continue
		}

		value := rate
		date, _ := datetime.ParseMonthKey(month)
		alert := model.Alert{
			Type:     model.AlertLowSavings,
			Severity: model.SeverityMedium,
			Title:    "Low savings rate",
			Message:  fmt.Sprintf("Savings rate of only %.1f%% in %s", rate, month),
			Value:    &value,
			Date:     &date,
		}
		if rate < 0 {
			alert.Severity = model.SeverityCritical
			alert.Title = "Monthly deficit"
			alert.Message = fmt.Sprintf("Deficit of %.1f%% in %s", -rate, month)
		}
		alerts = append(alerts, alert)
	}
	return alerts
}

// merchantGrowth flags merchants whose monthly spend is trending up by
// more than the growth threshold across at least MinMonths active months.
func (det *Detector) merchantGrowth(d *dataset) []model.Alert {
	byMerchant := make(map[string]map[string]float64)
	for _, tx := range d.expenses {
		if byMerchant[tx.Description] == nil {
			byMerchant[tx.Description] = make(map[string]float64)
		}
		byMerchant[tx.Description][tx.MonthKey] += tx.AbsoluteAmount.InexactFloat64()
	}

	merchants := make([]string, 0, len(byMerchant))
	for m := range byMerchant {
		merchants = append(merchants, m)
	}
	sort.Strings(merchants)

	var alerts []model.Alert
	for _, merchant := range merchants {
		monthly := byMerchant[merchant]
		if len(monthly) < det.t.MinMonths {
			continue
		}

		months := make([]string, 0, len(monthly))
		for m := range monthly {
			months = append(months, m)
		}
		sort.Strings(months)

		series := make([]float64, len(months))
		for i, m := range months {
			series[i] = monthly[m]
		}

		trend := computeTrend(series)
		if trend.Direction != model.TrendIncreasing || trend.ChangePct <= det.t.MerchantGrowthPct {
			continue
		}

		value := trend.ChangePct
		alerts = append(alerts, model.Alert{
			Type:     model.AlertMerchantGrowth,
			Severity: model.SeverityLow,
			Title:    "Growing merchant spend",
			Message:  fmt.Sprintf("Spending at %s grew %.1f%%", truncateDesc(merchant), trend.ChangePct),
			Value:    &value,
		})
	}
	return alerts
}

func truncateDesc(s string) string {
	const max = 30
	if len(s) <= max {
		return s
	}
	return s[:max]
}
