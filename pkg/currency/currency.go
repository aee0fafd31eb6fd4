// Package currency provides standardized monetary handling across the
// application. All amounts are stored as decimal.Decimal to avoid
// floating-point errors, and raw statement values are parsed tolerantly
// (currency symbols, thousands separators, comma-as-decimal).
package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// Supported currencies.
const (
	BRL Currency = "BRL" // Brazilian Real
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
	GBP Currency = "GBP" // British Pound
)

// DefaultCurrency is the currency assumed when a statement does not say.
const DefaultCurrency = BRL

// CurrencyInfo contains formatting metadata about a currency.
type CurrencyInfo struct {
	Code         Currency
	Symbol       string
	SymbolBefore bool
	ThousandsSep string
	DecimalSep   string
}

var currencies = map[Currency]CurrencyInfo{
	BRL: {Code: BRL, Symbol: "R$", SymbolBefore: true, ThousandsSep: ".", DecimalSep: ","},
	USD: {Code: USD, Symbol: "$", SymbolBefore: true, ThousandsSep: ",", DecimalSep: "."},
	EUR: {Code: EUR, Symbol: "€", SymbolBefore: false, ThousandsSep: ".", DecimalSep: ","},
	GBP: {Code: GBP, Symbol: "£", SymbolBefore: true, ThousandsSep: ",", DecimalSep: "."},
}

// GetInfo returns metadata for a currency code.
func GetInfo(code Currency) (CurrencyInfo, bool) {
	info, ok := currencies[code]
	return info, ok
}

// Money represents a monetary amount with currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewMoney creates a new Money value.
func NewMoney(amount decimal.Decimal, curr Currency) Money {
	if curr == "" {
		curr = DefaultCurrency
	}
	return Money{Amount: amount, Currency: curr}
}

// Format returns a formatted string representation, e.g. "R$1234.56".
func (m Money) Format() string {
	info, ok := GetInfo(m.Currency)
	if !ok {
		return fmt.Sprintf("%s %s", m.Amount.StringFixed(2), m.Currency)
	}
	if info.SymbolBefore {
		return fmt.Sprintf("%s%s", info.Symbol, m.Amount.StringFixed(2))
	}
	return fmt.Sprintf("%s%s", m.Amount.StringFixed(2), info.Symbol)
}

// ParseAmount converts a raw statement value into a decimal. It tolerates
// currency symbols, surrounding whitespace, thousands separators, and
// comma-as-decimal notation:
//
//	"R$ 1.234,56" -> 1234.56
//	"$1,234.56"   -> 1234.56
//	"-12,30"      -> -12.30
//	"1234.56"     -> 1234.56
//
// A separator followed by exactly three digits at the end of the number is
// treated as a thousands separator only when the other separator is also
// present; a lone separator with one or two trailing digits is the decimal
// point.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	// Strip everything but digits, sign, and separators.
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '+', r == '.', r == ',':
			b.WriteRune(r)
		}
	}
	s = b.String()
	if s == "" || s == "-" || s == "+" {
		return decimal.Decimal{}, fmt.Errorf("no digits in amount %q", raw)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Both present: the rightmost one is the decimal separator.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 || len(s)-lastComma-1 == 3 {
			// "1,234" or "1,234,567": thousands grouping.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
		// A single dot is kept as the decimal point even with three
		// trailing digits ("1.234" parses as 1.234): card exports that
		// group thousands with dots always carry a decimal comma too.
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d, nil
}
