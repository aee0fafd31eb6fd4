package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finlens/backend/internal/apperror"
	"github.com/finlens/backend/internal/logger"
)

// ErrorResponse represents a JSON error response body.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response with the given status code and message.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// handleError maps any pipeline error onto the right status code and a
// safe message, logging the original cause.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.GetStatusCode(err)

	resp := ErrorResponse{Error: apperror.GetMessage(err)}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		resp.Field = appErr.Field
	}

	if status >= http.StatusInternalServerError {
		cause := err
		if appErr != nil && appErr.Err != nil {
			cause = appErr.Err
		}
		logger.FromContext(r.Context()).Error("request failed",
			"path", r.URL.Path, "error", cause)
	}
	respondJSON(w, status, resp)
}

// NotFoundHandler serves the JSON body for unmatched routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	handleError(w, r, apperror.NotFound("route"))
}

// respondFile writes raw bytes with a download content type.
func respondFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
