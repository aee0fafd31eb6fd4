package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found constructor", NotFound("report"), http.StatusNotFound},
		{"bad request constructor", BadRequest("nope"), http.StatusBadRequest},
		{"validation constructor", ValidationError("message", "required"), http.StatusBadRequest},
		{"schema constructor", SchemaError("file.csv", "no date column"), http.StatusUnprocessableEntity},
		{"insufficient data constructor", InsufficientData("predictions"), http.StatusNotFound},
		{"internal constructor", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"no data sentinel", ErrNoData, http.StatusNotFound},
		{"wrapped schema sentinel", fmt.Errorf("loading: %w", ErrSchema), http.StatusUnprocessableEntity},
		{"wrapped insufficient data", fmt.Errorf("scoring: %w", ErrInsufficientData), http.StatusNotFound},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetStatusCode(tt.err))
		})
	}
}

func TestGetMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "report not found", GetMessage(NotFound("report")))
	assert.Equal(t, "not enough data for predictions", GetMessage(InsufficientData("predictions")))
	assert.Equal(t, "an internal error occurred", GetMessage(Internal(errors.New("boom"))))
	assert.Equal(t, "boom", GetMessage(errors.New("boom")))
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, InsufficientData("stability"), ErrInsufficientData)
	assert.ErrorIs(t, ValidationError("message", "required"), ErrValidation)
	assert.Equal(t, "message: required", ValidationError("message", "required").Error())
}
