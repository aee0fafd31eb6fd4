package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction indicates whether a transaction brings money in or out.
// It is derived from the sign of the amount: positive means income.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// CostType classifies an expense as recurring/contractual or discretionary.
type CostType string

const (
	CostTypeFixed    CostType = "fixed"
	CostTypeVariable CostType = "variable"
)

// Category is the closed enumeration used throughout categorization,
// scoring, and reporting. A transaction always carries one of these values;
// anything that cannot be matched falls back to CategoryOther.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryMarket        Category = "Market"
	CategoryHealth        Category = "Health"
	CategoryHousing       Category = "Housing"
	CategoryTransport     Category = "Transport"
	CategoryEducation     Category = "Education"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryLeisure       Category = "Leisure"
	CategoryTransfers     Category = "Transfers"
	CategoryPhone         Category = "Phone"
	CategoryInvestment    Category = "Investment"
	CategoryIncome        Category = "Income"
	CategoryOther         Category = "Other"
)

// Categories lists every member of the enumeration in a stable order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryMarket,
		CategoryHealth,
		CategoryHousing,
		CategoryTransport,
		CategoryEducation,
		CategoryShopping,
		CategoryEntertainment,
		CategoryLeisure,
		CategoryTransfers,
		CategoryPhone,
		CategoryInvestment,
		CategoryIncome,
		CategoryOther,
	}
}

// IsValidCategory reports whether s is a member of the closed enumeration.
func IsValidCategory(s string) bool {
	for _, c := range Categories() {
		if string(c) == s {
			return true
		}
	}
	return false
}

// NoDescription is the sentinel used when a source record has no
// description field.
const NoDescription = "no description"

// Transaction is one normalized financial record. It is immutable after
// categorization; the derived fields (Direction, AbsoluteAmount, the period
// keys) are computed once by the normalizer and never re-derived downstream.
type Transaction struct {
	ID             uuid.UUID       `json:"id"`
	Date           time.Time       `json:"date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	AbsoluteAmount decimal.Decimal `json:"absoluteAmount"`
	Direction      Direction       `json:"direction"`
	Category       Category        `json:"category"`
	CostType       CostType        `json:"costType"`
	SourceFile     string          `json:"sourceFile,omitempty"`

	// Period keys used for grouping, never for identity.
	Year     int    `json:"year"`
	MonthKey string `json:"monthKey"` // YYYY-MM
	Weekday  string `json:"weekday"`
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool { return t.Direction == DirectionExpense }

// IsIncome reports whether the transaction is an inflow.
func (t Transaction) IsIncome() bool { return t.Direction == DirectionIncome }

// Severity ranks how urgent an alert is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AlertType identifies which anomaly check produced an alert.
type AlertType string

const (
	AlertExpenseSpike   AlertType = "expense_spike"
	AlertLargePurchase  AlertType = "large_transaction"
	AlertCategoryShare  AlertType = "category_overspending"
	AlertLowSavings     AlertType = "low_savings"
	AlertMerchantGrowth AlertType = "merchant_growth"
)

// Alert is one detected spending irregularity. Alerts are created only by
// the anomaly detector and are immutable once emitted. The list carries no
// ordering guarantee; consumers may sort by severity.
type Alert struct {
	Type     AlertType  `json:"type"`
	Severity Severity   `json:"severity"`
	Title    string     `json:"title"`
	Message  string     `json:"message"`
	Value    *float64   `json:"value,omitempty"`
	Category Category   `json:"category,omitempty"`
	Date     *time.Time `json:"date,omitempty"`
}

// HealthClassification is the qualitative band for a health score.
type HealthClassification string

const (
	HealthExcellent HealthClassification = "Excellent"
	HealthGood      HealthClassification = "Good"
	HealthRegular   HealthClassification = "Regular"
	HealthPoor      HealthClassification = "Poor"
	HealthCritical  HealthClassification = "Critical"
)

// ClassifyHealth maps a 0-100 score to its qualitative band.
func ClassifyHealth(score float64) HealthClassification {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 65:
		return HealthGood
	case score >= 50:
		return HealthRegular
	case score >= 35:
		return HealthPoor
	default:
		return HealthCritical
	}
}

// ScoreComponent is one weighted sub-score of the health score.
type ScoreComponent struct {
	Score       float64 `json:"score"`
	MaxScore    float64 `json:"maxScore"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// HealthScore is the composite 0-100 financial health metric.
type HealthScore struct {
	Score          float64                   `json:"score"`
	Components     map[string]ScoreComponent `json:"components"`
	Classification HealthClassification      `json:"classification"`
	HasIncomeData  bool                      `json:"hasIncomeData"`
}
