package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/model"
)

// ReportProvider is the engine surface the HTTP layer needs, satisfied
// by *engine.Engine and by mocks in tests.
type ReportProvider interface {
	Report() (*model.Report, error)
	Transactions() ([]model.Transaction, error)
	Refresh(ctx context.Context) (*model.Report, error)
	LastRefresh() (engine.RefreshStats, time.Time)
}

// RefreshScheduler is the background job surface exposed through the
// status and sync endpoints. Nil when scheduling is disabled.
type RefreshScheduler interface {
	RunNow()
	GetNextRunTime() time.Time
}

// ReportHandler serves the assembled report and its sections.
type ReportHandler struct {
	provider ReportProvider
	sched    RefreshScheduler
}

func NewReportHandler(provider ReportProvider, sched RefreshScheduler) *ReportHandler {
	return &ReportHandler{provider: provider, sched: sched}
}

// GetReport returns the full report.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// GetHealthScore returns the health score section.
func (h *ReportHandler) GetHealthScore(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	if report.HealthScore == nil {
		handleError(w, r, apperror.InsufficientData("a health score"))
		return
	}
	respondJSON(w, http.StatusOK, report.HealthScore)
}

// GetAlerts returns the alert list, which may be empty.
func (h *ReportHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report.Alerts)
}

// GetPredictions returns the forecast section.
func (h *ReportHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	if report.Predictions == nil {
		handleError(w, r, apperror.InsufficientData("predictions"))
		return
	}
	respondJSON(w, http.StatusOK, report.Predictions)
}

// GetInsights returns the monthly insight section.
func (h *ReportHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	if report.Insights == nil {
		handleError(w, r, apperror.InsufficientData("insights"))
		return
	}
	respondJSON(w, http.StatusOK, report.Insights)
}

// GetPatterns returns the spending pattern section.
func (h *ReportHandler) GetPatterns(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	if report.Patterns == nil {
		handleError(w, r, apperror.InsufficientData("spending patterns"))
		return
	}
	respondJSON(w, http.StatusOK, report.Patterns)
}

// Refresh reruns the pipeline and returns the fresh report.
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Refresh(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// RunSync triggers the scheduled refresh-and-sync job immediately.
func (h *ReportHandler) RunSync(w http.ResponseWriter, r *http.Request) {
	if h.sched == nil {
		respondError(w, http.StatusConflict, "background sync is not enabled")
		return
	}
	h.sched.RunNow()
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

// StatusResponse reports the latest pipeline run.
type StatusResponse struct {
	LastRefresh      *time.Time          `json:"lastRefresh,omitempty"`
	NextScheduledRun *time.Time          `json:"nextScheduledRun,omitempty"`
	Stats            engine.RefreshStats `json:"stats"`
}

// GetStatus reports when the pipeline last ran and what it processed.
func (h *ReportHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	stats, at := h.provider.LastRefresh()
	resp := StatusResponse{Stats: stats}
	if !at.IsZero() {
		resp.LastRefresh = &at
	}
	if h.sched != nil {
		if next := h.sched.GetNextRunTime(); !next.IsZero() {
			resp.NextScheduledRun = &next
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
