package analysis

import (
	"time"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
)

// Assembler produces the versioned report from a transaction list.
type Assembler struct {
	thresholds Thresholds
	detector   *Detector
}

func NewAssembler(t Thresholds) *Assembler {
	return &Assembler{thresholds: t, detector: NewDetector(t)}
}

// Assemble runs every analyzer and collects their output. Sections
// whose minimum-sample requirements were not met come back nil; the
// summary and period are always present. An empty transaction list is
// an error, not an empty report.
func (a *Assembler) Assemble(txs []model.Transaction) (*model.Report, error) {
	if len(txs) == 0 {
		return nil, apperror.ErrNoData
	}

	d := newDataset(txs)

	report := &model.Report{
		GeneratedAt: time.Now().UTC(),
		Period:      period(txs),
		Summary:     buildSummary(d),
		Insights:    buildInsights(d),
		Alerts:      a.detector.detect(d),
		Patterns:    buildPatterns(d),
		Predictions: buildPredictions(d),
		HealthScore: buildHealthScore(d, a.thresholds.LargeTxQuantile),
	}
	if report.Alerts == nil {
		report.Alerts = []model.Alert{}
	}

	logger.Info("report assembled",
		"transactions", len(txs),
		"months", len(d.allMonths),
		"alerts", len(report.Alerts))
	return report, nil
}
