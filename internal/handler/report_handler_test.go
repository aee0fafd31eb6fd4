package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/chat"
	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/engine"
	"github.com/finlens/backend/internal/model"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Report() (*model.Report, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockProvider) Transactions() ([]model.Transaction, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Transaction), args.Error(1)
}

func (m *MockProvider) Refresh(ctx context.Context) (*model.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockProvider) LastRefresh() (engine.RefreshStats, time.Time) {
	args := m.Called()
	return args.Get(0).(engine.RefreshStats), args.Get(1).(time.Time)
}

func testReport() *model.Report {
	return &model.Report{
		GeneratedAt: time.Now().UTC(),
		Summary: model.Summary{
			TransactionCount: 3,
			TotalIncome:      decimal.NewFromInt(1000),
			TotalExpense:     decimal.NewFromInt(400),
			NetBalance:       decimal.NewFromInt(600),
		},
		Alerts:      []model.Alert{},
		HealthScore: &model.HealthScore{Score: 90, Classification: model.HealthExcellent},
	}
}

func TestGetReport(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Report").Return(testReport(), nil)
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report model.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Summary.TransactionCount)
}

func TestGetReportNoData(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Report").Return(nil, apperror.ErrNoData)
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.GetReport(rec, httptest.NewRequest(http.MethodGet, "/api/report", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetHealthScore(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Report").Return(testReport(), nil)
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.GetHealthScore(rec, httptest.NewRequest(http.MethodGet, "/api/report/health-score", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var hs model.HealthScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hs))
	assert.Equal(t, model.HealthExcellent, hs.Classification)
}

func TestGetHealthScoreMissingSection(t *testing.T) {
	t.Parallel()

	report := testReport()
	report.HealthScore = nil
	provider := new(MockProvider)
	provider.On("Report").Return(report, nil)
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.GetHealthScore(rec, httptest.NewRequest(http.MethodGet, "/api/report/health-score", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "not enough data")
}

func TestNotFoundHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	NotFoundHandler(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "route not found", resp.Error)
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Refresh", mock.Anything).Return(testReport(), nil)
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	provider.AssertExpectations(t)
}

func TestGetStatusBeforeFirstRun(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("LastRefresh").Return(engine.RefreshStats{}, time.Time{})
	h := NewReportHandler(provider, nil)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Nil(t, status.LastRefresh)
}

type stubScheduler struct {
	next time.Time
	runs int
}

func (s *stubScheduler) RunNow() { s.runs++ }

func (s *stubScheduler) GetNextRunTime() time.Time { return s.next }

func TestGetStatusIncludesNextScheduledRun(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("LastRefresh").Return(engine.RefreshStats{}, time.Time{})
	next := time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC)
	h := NewReportHandler(provider, &stubScheduler{next: next})

	rec := httptest.NewRecorder()
	h.GetStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.NotNil(t, status.NextScheduledRun)
	assert.True(t, status.NextScheduledRun.Equal(next))
}

func TestRunSync(t *testing.T) {
	t.Parallel()

	sched := &stubScheduler{}
	h := NewReportHandler(new(MockProvider), sched)

	rec := httptest.NewRecorder()
	h.RunSync(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, sched.runs)
}

func TestRunSyncWithoutScheduler(t *testing.T) {
	t.Parallel()

	h := NewReportHandler(new(MockProvider), nil)

	rec := httptest.NewRecorder()
	h.RunSync(rec, httptest.NewRequest(http.MethodPost, "/api/sync", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportTransactionsCSV(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Transactions").Return([]model.Transaction{{
		Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Description: "Mercado",
		Amount:      decimal.NewFromInt(-100),
		Direction:   model.DirectionExpense,
		Category:    model.CategoryMarket,
	}}, nil)
	h := NewExportHandler(provider)

	rec := httptest.NewRecorder()
	h.ExportTransactionsCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export/transactions.csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Mercado")
}

func TestExportReportPDF(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Report").Return(testReport(), nil)
	h := NewExportHandler(provider)

	rec := httptest.NewRecorder()
	h.ExportReportPDF(rec, httptest.NewRequest(http.MethodGet, "/api/export/report.pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestChatHandler(t *testing.T) {
	t.Parallel()

	provider := new(MockProvider)
	provider.On("Report").Return(testReport(), nil)
	h := NewChatHandler(chat.NewAssistant(config.ClassifierConfig{}), provider)

	body := strings.NewReader(`{"message":"qual o saldo?"}`)
	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", body))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chat.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rules", resp.Source)
	assert.Contains(t, resp.Message, "R$600.00")
}

func TestChatHandlerValidation(t *testing.T) {
	t.Parallel()

	h := NewChatHandler(chat.NewAssistant(config.ClassifierConfig{}), new(MockProvider))

	rec := httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "message", resp.Field)

	rec = httptest.NewRecorder()
	h.Chat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
