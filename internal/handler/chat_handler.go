package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/chat"
)

// ChatHandler answers questions about the latest report.
type ChatHandler struct {
	assistant *chat.Assistant
	provider  ReportProvider
}

func NewChatHandler(assistant *chat.Assistant, provider ReportProvider) *ChatHandler {
	return &ChatHandler{assistant: assistant, provider: provider}
}

// Chat handles one question.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperror.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		handleError(w, r, apperror.ValidationError("message", "message is required"))
		return
	}

	report, err := h.provider.Report()
	if err != nil {
		handleError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.assistant.Answer(r.Context(), report, req.Message))
}
