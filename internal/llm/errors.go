package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/openai/openai-go/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies a provider failure.
type ErrorKind string

const (
	// KindRateLimit means the provider refused the call because of quota or load. It is the only retryable kind.
	KindRateLimit ErrorKind = "rate_limit"
	// KindTransport covers network, auth and other provider failures.
	KindTransport ErrorKind = "transport"
	// KindMalformed means the provider answered but the response carried no usable text.
	KindMalformed ErrorKind = "malformed"
)

// ErrRateLimitExhausted is wrapped by the error returned once every retry attempt hit a rate limit.
var ErrRateLimitExhausted = errors.New("the API rate limit was exceeded after multiple retries")

// Error represents a classified LLM provider failure
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf returns the kind of err. Errors not produced by this package are reported as KindTransport.
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindTransport
}

// IsRateLimit reports whether err is a rate-limit failure, including an exhausted retry loop.
func IsRateLimit(err error) bool {
	return err != nil && KindOf(err) == KindRateLimit
}

// classifyGeminiError maps a genai error onto an *Error.
func classifyGeminiError(err error) *Error {
	if isGeminiRateLimit(err) {
		return &Error{Kind: KindRateLimit, Message: "gemini rate limit", Cause: err}
	}
	return &Error{Kind: KindTransport, Message: "failed to generate content", Cause: err}
}

func isGeminiRateLimit(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if status.Code(err) == codes.ResourceExhausted {
		return true
	}
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPCode() == http.StatusTooManyRequests {
			return true
		}
		if s := apiErr.GRPCStatus(); s != nil && s.Code() == codes.ResourceExhausted {
			return true
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}
	return false
}

// classifyOpenAIError maps an openai-go error onto an *Error.
func classifyOpenAIError(err error) *Error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return &Error{Kind: KindRateLimit, Message: "openai rate limit", Cause: err}
	}
	return &Error{Kind: KindTransport, Message: "failed to generate content", Cause: err}
}
