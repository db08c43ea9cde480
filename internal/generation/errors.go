package generation

import (
	"errors"
	"fmt"

	"github.com/jonathan/docstudio/internal/llm"
)

// Op names a generation operation
type Op string

const (
	OpGenerate Op = "generate"
	OpAnalyze  Op = "analyze"
	OpRewrite  Op = "rewrite"
)

// BusyMessage is shown when the provider kept rate limiting every retry.
const BusyMessage = "Our servers are currently busy due to high demand. Please wait a moment and try again."

// ErrInvalidRequest is wrapped by UserErrors caused by request validation.
var ErrInvalidRequest = errors.New("invalid request")

// UserError is the only error type returned by Service. Error() is safe to show to end users.
type UserError struct {
	Op      Op
	Message string
	Cause   error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// IsBusy reports whether the error is the rate-limit exhaustion case.
func (e *UserError) IsBusy() bool {
	return errors.Is(e.Cause, llm.ErrRateLimitExhausted)
}

func failureVerb(op Op) string {
	switch op {
	case OpAnalyze:
		return "analyze"
	case OpRewrite:
		return "rewrite"
	default:
		return "generate"
	}
}

// newUserError maps a client failure onto the message shown to the user.
func newUserError(op Op, err error) *UserError {
	if errors.Is(err, llm.ErrRateLimitExhausted) {
		return &UserError{Op: op, Message: BusyMessage, Cause: err}
	}
	return &UserError{
		Op:      op,
		Message: fmt.Sprintf("Failed to %s document: %v", failureVerb(op), err),
		Cause:   err,
	}
}

func newValidationError(op Op, err error) *UserError {
	return &UserError{
		Op:      op,
		Message: fmt.Sprintf("Invalid %s request: %v", op, err),
		Cause:   fmt.Errorf("%w: %w", ErrInvalidRequest, err),
	}
}
