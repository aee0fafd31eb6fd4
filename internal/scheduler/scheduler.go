// Package scheduler provides cron-based scheduling for the pipeline
// refresh and the optional spreadsheet sync.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/sheets"
)

// Config holds the scheduler configuration
type Config struct {
	// Schedule is a cron expression for when to refresh (e.g., "0 6 * * *" for daily at 06:00)
	Schedule string
	// Timeout is the maximum duration for a complete refresh+sync cycle
	Timeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Schedule: "0 6 * * *", // Daily at 06:00
		Timeout:  5 * time.Minute,
		Enabled:  true,
	}
}

// Scheduler runs the periodic refresh job.
type Scheduler struct {
	cron    *cron.Cron
	engine  *engine.Engine
	syncer  *sheets.Syncer // nil when sheet sync is off
	config  Config
	logger  *slog.Logger
	entryID cron.EntryID
}

// New creates a new Scheduler instance
func New(cfg Config, eng *engine.Engine, syncer *sheets.Syncer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		engine: eng,
		syncer: syncer,
		config: cfg,
		logger: logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// Convert standard cron (5 fields) to cron with seconds (6 fields)
	schedule := "0 " + s.config.Schedule

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runRefreshJob()
	})
	if err != nil {
		return err
	}

	s.entryID = entryID
	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("schedule", s.config.Schedule),
		slog.Duration("timeout", s.config.Timeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// RunNow triggers an immediate refresh (useful for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runRefreshJob()
}

// runRefreshJob reruns the pipeline and pushes the result to the
// spreadsheet when sync is configured.
func (s *Scheduler) runRefreshJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Info("Starting scheduled refresh job")

	report, err := s.engine.Refresh(ctx)
	if err != nil {
		s.logger.Error("Refresh job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(startTime)),
		)
		return
	}

	if s.syncer != nil {
		txs, err := s.engine.Transactions()
		if err == nil {
			err = s.syncer.Sync(ctx, report, txs)
		}
		if err != nil {
			s.logger.Error("Sheet sync failed", slog.String("error", err.Error()))
		}
	}

	s.logger.Info("Refresh job completed",
		slog.Int("transactions", report.Summary.TransactionCount),
		slog.Duration("duration", time.Since(startTime)),
	)
}

// GetNextRunTime returns the next scheduled run time
func (s *Scheduler) GetNextRunTime() time.Time {
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
