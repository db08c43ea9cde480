package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/docstudio/internal/export"
	"github.com/jonathan/docstudio/internal/generation"
	"github.com/jonathan/docstudio/internal/history"
	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	malformed := &tabular.MalformedError{Reason: tabular.ReasonNotArray, Message: "not an array"}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"superseded", ErrSuperseded, http.StatusConflict},
		{"history miss", fmt.Errorf("lookup: %w", history.ErrNotFound), http.StatusNotFound},
		{"validation", &ErrValidation{Field: "kind", Message: "bad"}, http.StatusBadRequest},
		{"invalid generation request", &generation.UserError{Op: generation.OpGenerate, Cause: fmt.Errorf("%w: x", generation.ErrInvalidRequest)}, http.StatusBadRequest},
		{"malformed spreadsheet", &export.EncodeError{Format: types.KindXLSX, Message: "m", Cause: malformed}, http.StatusUnprocessableEntity},
		{"busy", &generation.UserError{Op: generation.OpGenerate, Cause: llm.ErrRateLimitExhausted}, http.StatusServiceUnavailable},
		{"provider failure", &generation.UserError{Op: generation.OpRewrite, Cause: errors.New("down")}, http.StatusBadGateway},
		{"encode failure", &export.EncodeError{Format: types.KindPDF, Message: "m"}, http.StatusInternalServerError},
		{"unknown", errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "invalid_request", errorCode(http.StatusBadRequest))
	assert.Equal(t, "superseded", errorCode(http.StatusConflict))
	assert.Equal(t, "malformed_content", errorCode(http.StatusUnprocessableEntity))
	assert.Equal(t, "busy", errorCode(http.StatusServiceUnavailable))
	assert.Equal(t, "internal_error", errorCode(http.StatusTeapot))
}

func TestErrValidation_Error(t *testing.T) {
	err := &ErrValidation{Field: "customization.logo", Message: "too big"}
	assert.Equal(t, "validation error: customization.logo - too big", err.Error())
}
