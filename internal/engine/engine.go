// Package engine wires the pipeline together: load statements,
// normalize, categorize, derive cost types, then assemble the report.
// It holds the latest result for the HTTP layer and the exporters.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/category"
	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/ingest"
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
)

// RefreshStats summarizes one pipeline run.
type RefreshStats struct {
	Files          int            `json:"files"`
	Transactions   int            `json:"transactions"`
	Dropped        int            `json:"dropped"`
	Deduplicated   int            `json:"deduplicated"`
	Categorization category.Stats `json:"categorization"`
	Duration       time.Duration  `json:"duration"`
}

// Engine runs the analysis pipeline and caches the latest report.
type Engine struct {
	loader      *ingest.Loader
	rules       *category.Rules
	categorizer *category.Categorizer
	assembler   *analysis.Assembler
	store       category.Store

	mu          sync.RWMutex
	report      *model.Report
	txs         []model.Transaction
	lastStats   RefreshStats
	lastRefresh time.Time
}

// New builds the engine from configuration: the rules file is required,
// the cache store is SQLite when a path is configured and in-memory
// otherwise, and the LLM classifier is attached only when an API key
// is present.
func New(cfg *config.Config) (*Engine, error) {
	rules, err := category.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("loading category rules: %w", err)
	}

	var store category.Store
	if cfg.CacheDBPath != "" {
		store, err = category.NewSQLiteStore(cfg.CacheDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening categorization cache: %w", err)
		}
	} else {
		store = category.NewMemoryStore()
	}

	var llm category.LabelService
	if classifier := category.NewClassifier(cfg.Classifier); classifier != nil {
		llm = classifier
		logger.Info("LLM classifier enabled", "model", cfg.Classifier.Model)
	} else {
		logger.Info("LLM classifier disabled, using keyword rules")
	}

	return &Engine{
		loader: ingest.NewLoader(cfg.DataDir),
		rules:  rules,
		categorizer: category.NewCategorizer(store, rules, llm,
			cfg.Classifier.BatchSize, cfg.Classifier.BatchDelay),
		assembler: analysis.NewAssembler(analysis.DefaultThresholds()),
		store:     store,
	}, nil
}

// Refresh reruns the whole pipeline and replaces the cached report.
func (e *Engine) Refresh(ctx context.Context) (*model.Report, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)
	start := time.Now()

	batches, err := e.loader.Load()
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, apperror.ErrNoData
	}

	normalized, err := ingest.NormalizeAll(batches)
	if err != nil {
		return nil, err
	}
	if len(normalized.Transactions) == 0 {
		return nil, apperror.ErrNoData
	}

	catStats, err := e.categorizer.Categorize(ctx, normalized.Transactions)
	if err != nil {
		return nil, err
	}

	// Cost types depend on the final category labels.
	ingest.DeriveCostTypes(normalized.Transactions, e.rules.FixedCosts)

	report, err := e.assembler.Assemble(normalized.Transactions)
	if err != nil {
		return nil, err
	}

	stats := RefreshStats{
		Files:          len(batches),
		Transactions:   len(normalized.Transactions),
		Dropped:        normalized.Dropped,
		Deduplicated:   normalized.Deduplicated,
		Categorization: catStats,
		Duration:       time.Since(start),
	}

	e.mu.Lock()
	e.report = report
	e.txs = normalized.Transactions
	e.lastStats = stats
	e.lastRefresh = time.Now()
	e.mu.Unlock()

	log.Info("pipeline refresh complete",
		"files", stats.Files,
		"transactions", stats.Transactions,
		"dropped", stats.Dropped,
		"deduplicated", stats.Deduplicated,
		"duration", stats.Duration)
	return report, nil
}

// Report returns the latest assembled report.
func (e *Engine) Report() (*model.Report, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.report == nil {
		return nil, apperror.ErrNoData
	}
	return e.report, nil
}

// Transactions returns the transaction list behind the latest report.
func (e *Engine) Transactions() ([]model.Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.txs == nil {
		return nil, apperror.ErrNoData
	}
	return e.txs, nil
}

// LastRefresh reports the stats and time of the latest successful run.
func (e *Engine) LastRefresh() (RefreshStats, time.Time) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastStats, e.lastRefresh
}

func (e *Engine) Close() error {
	return e.store.Close()
}
