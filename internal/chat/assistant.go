// Package chat answers natural-language questions about the latest
// report. With an API key configured the question goes to the LLM along
// with a text rendering of the report; otherwise a keyword matcher
// serves canned answers from the same data.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finlens/backend/internal/config"
	"github.com/finlens/backend/internal/export"
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
	"github.com/finlens/backend/pkg/currency"
)

// Request is an incoming chat message.
type Request struct {
	Message string `json:"message"`
}

// Response is the assistant's answer.
type Response struct {
	Message string `json:"message"`
	Source  string `json:"source"` // "llm" or "rules"
}

// Assistant answers questions over an assembled report.
type Assistant struct {
	cfg    config.ClassifierConfig
	client *http.Client
}

func NewAssistant(cfg config.ClassifierConfig) *Assistant {
	a := &Assistant{cfg: cfg}
	if cfg.APIKey != "" {
		a.client = &http.Client{Timeout: cfg.Timeout}
	}
	return a
}

const assistantPrompt = `You are a personal finance assistant. Answer the
user's question using only the financial report below. Be concise and
answer in the user's language.

%s

Question: %s`

// Answer responds to a question about the report. LLM failures degrade
// to the keyword matcher; the endpoint never errors on a bad model
// response.
func (a *Assistant) Answer(ctx context.Context, report *model.Report, question string) Response {
	if a.client != nil {
		if answer, err := a.llmAnswer(ctx, report, question); err == nil {
			return Response{Message: answer, Source: "llm"}
		} else {
			logger.Warn("assistant LLM call failed, using keyword answers", "error", err)
		}
	}
	return Response{Message: a.ruleAnswer(report, question), Source: "rules"}
}

func (a *Assistant) llmAnswer(ctx context.Context, report *model.Report, question string) (string, error) {
	prompt := fmt.Sprintf(assistantPrompt, export.ReportText(report), question)

	body, err := json.Marshal(map[string]interface{}{
		"model": a.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API status %d", resp.StatusCode)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty model response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// ruleAnswer serves canned answers keyed on question keywords.
func (a *Assistant) ruleAnswer(report *model.Report, question string) string {
	q := strings.ToLower(question)
	s := report.Summary

	switch {
	case containsAny(q, "quanto gastei", "total gasto", "spent", "expense"):
		return fmt.Sprintf("Total expenses: %s across %d transactions.",
			formatMoney(s.TotalExpense), s.TransactionCount)

	case containsAny(q, "receita", "ganho", "income", "earned"):
		return fmt.Sprintf("Total income: %s.", formatMoney(s.TotalIncome))

	case containsAny(q, "saldo", "sobrou", "balance"):
		verdict := "you broke even"
		if s.NetBalance.IsPositive() {
			verdict = "you saved money"
		} else if s.NetBalance.IsNegative() {
			verdict = "you spent more than you earned"
		}
		return fmt.Sprintf("Net balance: %s, %s.", formatMoney(s.NetBalance), verdict)

	case containsAny(q, "categoria", "onde gasto", "category", "where"):
		if p := report.Patterns; p != nil && len(p.ByCategory) > 0 {
			top := p.ByCategory[0]
			return fmt.Sprintf("Your biggest category is %s: %s (%.1f%% of spending).",
				top.Category, formatMoney(top.Total), top.Share*100)
		}
		return "No category breakdown is available yet."

	case containsAny(q, "saude", "score", "health"):
		if hs := report.HealthScore; hs != nil {
			return fmt.Sprintf("Your financial health score is %.1f/100 (%s).",
				hs.Score, hs.Classification)
		}
		return "No health score is available yet."

	case containsAny(q, "alerta", "alert", "problema", "anomal"):
		if len(report.Alerts) == 0 {
			return "No alerts on the current report."
		}
		return fmt.Sprintf("There are %d alerts; the first one: %s.",
			len(report.Alerts), report.Alerts[0].Message)

	case containsAny(q, "previsao", "proximo mes", "predict", "forecast"):
		if p := report.Predictions; p != nil && p.NextMonthAverage != nil {
			return fmt.Sprintf("Estimated spending next month: %s.",
				formatMoney(*p.NextMonthAverage))
		}
		return "Not enough history for a forecast yet."
	}

	return "I can answer questions about your expenses, income, balance, categories, health score, alerts and forecasts."
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func formatMoney(d decimal.Decimal) string {
	return currency.NewMoney(d, currency.DefaultCurrency).Format()
}
