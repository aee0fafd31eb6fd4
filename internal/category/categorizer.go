package category

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
)

// LabelService is the LLM classification dependency of the categorizer,
// satisfied by *Classifier and by mocks in tests.
type LabelService interface {
	Classify(ctx context.Context, description string, amount decimal.Decimal) Outcome
}

// Stats summarizes one categorization pass.
type Stats struct {
	Total          int `json:"total"`
	AlreadyLabeled int `json:"already_labeled"`
	FromCache      int `json:"from_cache"`
	FromClassifier int `json:"from_classifier"`
	FromRules      int `json:"from_rules"`
	Unmatched      int `json:"unmatched"`
}

// Categorizer assigns a category to every transaction. Resolution order:
// preset label from the statement, cache, classifier, keyword rules,
// then Other. Every resolved label, the Other fallback included, is
// written back to the cache so the same merchant resolves without a
// network call on the next run.
type Categorizer struct {
	store      Store
	rules      *Rules
	llm        LabelService // nil disables LLM classification
	batchSize  int
	batchDelay time.Duration
}

func NewCategorizer(store Store, rules *Rules, llm LabelService, batchSize int, batchDelay time.Duration) *Categorizer {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Categorizer{
		store:      store,
		rules:      rules,
		llm:        llm,
		batchSize:  batchSize,
		batchDelay: batchDelay,
	}
}

// Categorize labels the transactions in place and returns the pass
// statistics. Transactions already carrying a valid non-Other category
// are left untouched. Cache read or write failures degrade to the
// rule path instead of failing the run.
func (c *Categorizer) Categorize(ctx context.Context, txs []model.Transaction) (Stats, error) {
	stats := Stats{Total: len(txs)}
	calls := 0

	for i := range txs {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if txs[i].Category != model.CategoryOther {
			stats.AlreadyLabeled++
			continue
		}

		key := CacheKey(txs[i].Description, txs[i].Amount)

		if cached, ok, err := c.store.Get(ctx, key); err != nil {
			logger.Warn("cache read failed", "error", err)
		} else if ok {
			txs[i].Category = cached
			stats.FromCache++
			continue
		}

		if c.llm != nil {
			if out := c.llm.Classify(ctx, txs[i].Description, txs[i].Amount); out.Classified {
				txs[i].Category = out.Category
				stats.FromClassifier++
				c.putCache(ctx, key, out.Category)

				calls++
				if calls%c.batchSize == 0 && c.batchDelay > 0 {
					if err := sleepCtx(ctx, c.batchDelay); err != nil {
						return stats, err
					}
				}
				continue
			}
		}

		if matched := c.rules.Match(txs[i].Description); matched != model.CategoryOther {
			txs[i].Category = matched
			stats.FromRules++
			c.putCache(ctx, key, matched)
			continue
		}

		// Other is still a resolved answer; caching it keeps the next
		// run from asking the classifier about the same merchant again.
		c.putCache(ctx, key, model.CategoryOther)
		stats.Unmatched++
	}

	logger.Info("categorization pass complete",
		"total", stats.Total,
		"cache", stats.FromCache,
		"classifier", stats.FromClassifier,
		"rules", stats.FromRules,
		"unmatched", stats.Unmatched)
	return stats, nil
}

func (c *Categorizer) putCache(ctx context.Context, key string, category model.Category) {
	if err := c.store.Put(ctx, key, category); err != nil {
		logger.Warn("cache write failed", "error", err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
