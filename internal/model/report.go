package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrendDirection classifies the slope of a fitted series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Trend is a least-squares fit over a monthly series. ChangePct is the
// percentage change between the first and last observed values and is zero
// when the first value is zero.
type Trend struct {
	Direction TrendDirection `json:"direction"`
	ChangePct float64        `json:"changePct"`
	Slope     float64        `json:"slope"`
}

// Period delimits the analyzed transaction window.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

// Summary holds the headline totals of an analysis run.
// NetBalance is always TotalIncome minus TotalExpense.
type Summary struct {
	TransactionCount int             `json:"transactionCount"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	NetBalance       decimal.Decimal `json:"netBalance"`
}

// MonthSummary is the income/expense/balance breakdown for one month.
// SavingsRate is only present when the feed carries income data.
type MonthSummary struct {
	Month       string          `json:"month"` // YYYY-MM
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsRate *float64        `json:"savingsRate,omitempty"`
}

// MonthHighlight names a month together with the amount that made it
// notable (best/worst balance, largest/smallest spend).
type MonthHighlight struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// Insights aggregates the monthly view of the transaction history.
// Trend fields are nil when fewer than two months were observed.
type Insights struct {
	HasIncomeData   bool            `json:"hasIncomeData"`
	Monthly         []MonthSummary  `json:"monthly"`
	MeanIncome      decimal.Decimal `json:"meanIncome"`
	MeanExpense     decimal.Decimal `json:"meanExpense"`
	MeanBalance     decimal.Decimal `json:"meanBalance"`
	MeanSavingsRate *float64        `json:"meanSavingsRate,omitempty"`
	LargestExpense  *MonthHighlight `json:"largestExpenseMonth,omitempty"`
	SmallestExpense *MonthHighlight `json:"smallestExpenseMonth,omitempty"`
	BestMonth       *MonthHighlight `json:"bestMonth,omitempty"`
	WorstMonth      *MonthHighlight `json:"worstMonth,omitempty"`
	IncomeTrend     *Trend          `json:"incomeTrend,omitempty"`
	ExpenseTrend    *Trend          `json:"expenseTrend,omitempty"`
	BalanceTrend    *Trend          `json:"balanceTrend,omitempty"`
}

// CategoryStat summarizes expense behavior within one category.
type CategoryStat struct {
	Category Category        `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Mean     decimal.Decimal `json:"mean"`
	Count    int             `json:"count"`
	Share    float64         `json:"share"` // fraction of total expense
	CV       float64         `json:"cv"`    // coefficient of variation of amounts
}

// MerchantStat summarizes spend at one merchant (by description).
type MerchantStat struct {
	Merchant string          `json:"merchant"`
	Total    decimal.Decimal `json:"total"`
	Mean     decimal.Decimal `json:"mean"`
	Count    int             `json:"count"`
}

// CostTypeStat aggregates fixed or variable expenses.
type CostTypeStat struct {
	Total decimal.Decimal `json:"total"`
	Mean  decimal.Decimal `json:"mean"`
	Count int             `json:"count"`
}

// Patterns holds the dimensional breakdowns of expense behavior.
type Patterns struct {
	ByWeekday       map[string]decimal.Decimal     `json:"byWeekday,omitempty"`
	TopWeekday      string                         `json:"topWeekday,omitempty"`
	ByCategory      []CategoryStat                 `json:"byCategory,omitempty"`
	TopMerchants    []MerchantStat                 `json:"topMerchants,omitempty"`
	Seasonality     map[string]decimal.Decimal     `json:"seasonality,omitempty"` // calendar month name -> total
	CostliestMonth  string                         `json:"costliestMonth,omitempty"`
	FixedVsVariable map[CostType]CostTypeStat      `json:"fixedVsVariable,omitempty"`
}

// Predictions carries the next-period spend forecasts. Each estimator is
// nil when its minimum-sample requirement is not met; it is never defaulted
// to zero.
type Predictions struct {
	NextMonthAverage  *decimal.Decimal             `json:"nextMonthAverage,omitempty"`
	NextMonthTrend    *decimal.Decimal             `json:"nextMonthTrend,omitempty"`
	NextMonthSeasonal *decimal.Decimal             `json:"nextMonthSeasonal,omitempty"`
	ExpenseTrend      *Trend                       `json:"expenseTrend,omitempty"`
	ByCategory        map[Category]decimal.Decimal `json:"byCategory,omitempty"`
	ByMerchant        map[string]decimal.Decimal   `json:"byMerchant,omitempty"`
}

// Report is the single insight structure handed to external consumers
// (HTTP handlers, exporters, the sheet sync, the chat assistant). Sections
// whose underlying computation lacked sufficient data are nil; the report
// is never half-completed beyond that.
type Report struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Period      Period       `json:"period"`
	Summary     Summary      `json:"summary"`
	Insights    *Insights    `json:"insights,omitempty"`
	Alerts      []Alert      `json:"alerts"`
	Patterns    *Patterns    `json:"patterns,omitempty"`
	Predictions *Predictions `json:"predictions,omitempty"`
	HealthScore *HealthScore `json:"healthScore,omitempty"`
}
