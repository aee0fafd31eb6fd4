// Package ingest converts heterogeneous statement exports into the
// canonical transaction list. Two shapes are recognized: the three-field
// card export (date, title, amount) and traditional bank layouts whose
// column roles are inferred from header synonyms.
package ingest

import (
	"strings"

	"github.com/google/uuid"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/currency"
	"github.com/finlens/backend/pkg/datetime"
)

// RawBatch is one decoded statement file: a header row plus data rows.
// Character encoding and delimiter handling happen in the loader; the
// normalizer only validates shape and field parseability.
type RawBatch struct {
	Source string
	Header []string
	Rows   [][]string
}

// Result carries the normalized transactions plus per-batch diagnostics.
// Rows failing date or amount parsing are dropped silently and counted.
type Result struct {
	Transactions []model.Transaction
	Dropped      int
	Deduplicated int
	CardFormat   bool
}

// cardColumns are the three header fields that identify a card export.
// Presence of all three switches sign-only direction handling on.
var cardColumns = [3]string{"date", "title", "amount"}

// synonyms maps a semantic role to the header substrings that select a
// column for it, matched case-insensitively.
var synonyms = map[string][]string{
	"date":        {"date", "data", "dia", "fecha"},
	"amount":      {"amount", "valor", "value", "montante"},
	"description": {"title", "descri", "histor", "memo", "detail", "estabelecimento"},
	"category":    {"categ"},
	"id":          {"id", "identificador", "identifier"},
}

type columnRoles struct {
	date        int
	amount      int
	description int
	category    int
	id          int
}

// Normalize converts a raw batch into canonical transactions. It returns
// a SchemaError when neither shape applies, i.e. when date and amount
// columns cannot be identified; individual unparseable rows never fail
// the batch.
func Normalize(batch RawBatch) (Result, error) {
	roles, card, err := detectShape(batch)
	if err != nil {
		return Result{}, err
	}

	res := Result{CardFormat: card}
	seen := make(map[string]bool)

	for _, row := range batch.Rows {
		if roles.id >= 0 && roles.id < len(row) {
			id := strings.TrimSpace(row[roles.id])
			if id != "" {
				if seen[id] {
					res.Deduplicated++
					continue
				}
				seen[id] = true
			}
		}

		tx, ok := normalizeRow(row, roles, batch.Source)
		if !ok {
			res.Dropped++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}

	if res.Dropped > 0 {
		logger.Debug("dropped unparseable rows",
			"source", batch.Source, "dropped", res.Dropped)
	}
	return res, nil
}

// NormalizeAll normalizes every batch and concatenates the results.
// A batch failing shape detection fails the whole call: a file whose
// columns cannot be identified is uninterpretable, not partially usable.
func NormalizeAll(batches []RawBatch) (Result, error) {
	var combined Result
	for _, b := range batches {
		r, err := Normalize(b)
		if err != nil {
			return Result{}, err
		}
		combined.Transactions = append(combined.Transactions, r.Transactions...)
		combined.Dropped += r.Dropped
		combined.Deduplicated += r.Deduplicated
		combined.CardFormat = combined.CardFormat || r.CardFormat
	}
	return combined, nil
}

// detectShape decides between the card export and the traditional layout.
// The card shape requires the exact three fields; otherwise roles are
// inferred from synonyms, and the batch is rejected only when date or
// amount cannot be found.
func detectShape(batch RawBatch) (columnRoles, bool, error) {
	lower := make([]string, len(batch.Header))
	for i, h := range batch.Header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	indexOf := func(name string) int {
		for i, h := range lower {
			if h == name {
				return i
			}
		}
		return -1
	}

	if d, t, a := indexOf(cardColumns[0]), indexOf(cardColumns[1]), indexOf(cardColumns[2]); d >= 0 && t >= 0 && a >= 0 {
		return columnRoles{date: d, amount: a, description: t, category: findRole(lower, "category"), id: findRole(lower, "id")}, true, nil
	}

	roles := columnRoles{
		date:        findRole(lower, "date"),
		amount:      findRole(lower, "amount"),
		description: findRole(lower, "description"),
		category:    findRole(lower, "category"),
		id:          findRole(lower, "id"),
	}
	if roles.date < 0 || roles.amount < 0 {
		return columnRoles{}, false, apperror.SchemaError(batch.Source,
			"date and amount columns could not be identified")
	}
	return roles, false, nil
}

// findRole returns the index of the first header matching any synonym for
// the role, or -1. The id role requires an exact match so that columns
// like "identidade" are not mistaken for identifiers.
func findRole(header []string, role string) int {
	for _, syn := range synonyms[role] {
		for i, h := range header {
			if role == "id" {
				if h == syn {
					return i
				}
				continue
			}
			if strings.Contains(h, syn) {
				return i
			}
		}
	}
	return -1
}

// normalizeRow builds one transaction. Returns false when the date or
// amount does not parse; such rows are dropped, never defaulted.
func normalizeRow(row []string, roles columnRoles, source string) (model.Transaction, bool) {
	field := func(idx int) string {
		if idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	date, err := datetime.ParseStatementDate(field(roles.date))
	if err != nil {
		return model.Transaction{}, false
	}
	amount, err := currency.ParseAmount(field(roles.amount))
	if err != nil {
		return model.Transaction{}, false
	}

	desc := field(roles.description)
	if desc == "" {
		desc = model.NoDescription
	}

	category := model.CategoryOther
	if c := field(roles.category); model.IsValidCategory(c) {
		category = model.Category(c)
	}

	direction := model.DirectionExpense
	if amount.IsPositive() {
		direction = model.DirectionIncome
	}

	return model.Transaction{
		ID:             uuid.New(),
		Date:           date,
		Description:    desc,
		Amount:         amount,
		AbsoluteAmount: amount.Abs(),
		Direction:      direction,
		Category:       category,
		CostType:       model.CostTypeVariable,
		SourceFile:     source,
		Year:           date.Year(),
		MonthKey:       datetime.MonthKey(date),
		Weekday:        date.Weekday().String(),
	}, true
}
