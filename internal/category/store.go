package category

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/model"
)

// Store is the categorization cache. Implementations must be safe for
// concurrent use. The cache survives across analysis runs so repeated
// merchants never hit the classifier twice.
type Store interface {
	Get(ctx context.Context, key string) (model.Category, bool, error)
	Put(ctx context.Context, key string, category model.Category) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// CacheKey builds the lookup key for a transaction: the lowercased,
// trimmed description joined with the absolute amount rounded to whole
// units. Rounding keeps small price fluctuations of the same merchant
// on one cache entry.
func CacheKey(description string, amount decimal.Decimal) string {
	return strings.ToLower(strings.TrimSpace(description)) + "_" + amount.Abs().Round(0).String()
}
