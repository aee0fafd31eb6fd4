package category

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
	"github.com/finlens/backend/internal/logger"
	"github.com/finlens/backend/internal/model"
)

// Outcome is the result of one classification attempt. Classified is
// false when the service could not produce a usable label, in which case
// the caller falls back to the keyword rules.
type Outcome struct {
	Category   model.Category
	Classified bool
}

// Classifier labels transactions through an OpenAI-compatible chat
// completions endpoint.
type Classifier struct {
	cfg    config.ClassifierConfig
	client *http.Client
}

// NewClassifier returns nil when no API key is configured, which
// disables LLM classification entirely.
func NewClassifier(cfg config.ClassifierConfig) *Classifier {
	if cfg.APIKey == "" {
		return nil
	}
	return &Classifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// OpenAIRequest represents the request payload for the chat API.
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

// OpenAIMessage represents a single message in the conversation.
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse represents the response from the chat API.
type OpenAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const classifierPrompt = `You are a personal finance categorization assistant.
Given one bank transaction, answer with exactly one category name from this list and nothing else:

%s

Transaction description: %s
Transaction amount: %s`

// Classify asks the model for a category. Any transport failure, empty
// response or label outside the closed category set yields an
// unclassified outcome; it never returns an error because the rule
// fallback makes classification best-effort.
func (c *Classifier) Classify(ctx context.Context, description string, amount decimal.Decimal) Outcome {
	prompt := fmt.Sprintf(classifierPrompt,
		strings.Join(categoryNames(), "\n"), description, amount.StringFixed(2))

	reqBody := OpenAIRequest{
		Model: c.cfg.Model,
		Messages: []OpenAIMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return Outcome{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return Outcome{}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn("classifier call failed", "error", err)
		return Outcome{}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{}
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("classifier returned non-OK status",
			"status", resp.StatusCode, "body", truncate(string(body), 200))
		return Outcome{}
	}

	var apiResp OpenAIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || len(apiResp.Choices) == 0 {
		return Outcome{}
	}

	label := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if !model.IsValidCategory(label) {
		logger.Debug("classifier produced a label outside the category set",
			"label", truncate(label, 50))
		return Outcome{}
	}
	return Outcome{Category: model.Category(label), Classified: true}
}

func categoryNames() []string {
	cats := model.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
