package handler

import (
	"net/http"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/export"
)

// ExportHandler serves downloadable renderings of the report.
type ExportHandler struct {
	provider ReportProvider
}

func NewExportHandler(provider ReportProvider) *ExportHandler {
	return &ExportHandler{provider: provider}
}

// ExportTransactionsCSV downloads the normalized transaction list.
func (h *ExportHandler) ExportTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	txs, err := h.provider.Transactions()
	if err != nil {
		handleError(w, r, err)
		return
	}
	data, err := export.TransactionsCSV(txs)
	if err != nil {
		handleError(w, r, apperror.Internal(err))
		return
	}
	respondFile(w, "text/csv", "transactions.csv", data)
}

// ExportReportPDF downloads the report summary as PDF.
func (h *ExportHandler) ExportReportPDF(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	data, err := export.ReportPDF(report)
	if err != nil {
		handleError(w, r, apperror.Internal(err))
		return
	}
	respondFile(w, "application/pdf", "report.pdf", data)
}

// ExportReportText downloads the plain-text summary.
func (h *ExportHandler) ExportReportText(w http.ResponseWriter, r *http.Request) {
	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.ReportText(report)))
}
