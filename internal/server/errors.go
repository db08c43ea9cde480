package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/docstudio/internal/export"
	"github.com/jonathan/docstudio/internal/generation"
	"github.com/jonathan/docstudio/internal/history"
	"github.com/jonathan/docstudio/internal/tabular"
)

// ErrSuperseded is returned for a generate request that finished after a newer one from the same session.
var ErrSuperseded = errors.New("request superseded by a newer generation")

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var malformed *tabular.MalformedError
	var encodeErr *export.EncodeError
	var userErr *generation.UserError

	switch {
	case errors.Is(err, ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.Is(err, generation.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &malformed):
		return http.StatusUnprocessableEntity
	case errors.As(err, &userErr):
		if userErr.IsBusy() {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case errors.As(err, &encodeErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorCode is the machine-readable code sent alongside the message.
func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "superseded"
	case http.StatusUnprocessableEntity:
		return "malformed_content"
	case http.StatusServiceUnavailable:
		return "busy"
	case http.StatusBadGateway:
		return "generation_failed"
	default:
		return "internal_error"
	}
}
