package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), KindRateLimit},
		{"wrapped grpc resource exhausted", fmt.Errorf("call: %w", status.Error(codes.ResourceExhausted, "quota")), KindRateLimit},
		{"googleapi 429", &googleapi.Error{Code: 429, Message: "Too Many Requests"}, KindRateLimit},
		{"googleapi 500", &googleapi.Error{Code: 500}, KindTransport},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), KindTransport},
		{"context canceled", context.Canceled, KindTransport},
		{"plain error", errors.New("boom"), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyGeminiError(tt.err)
			assert.Equal(t, tt.want, classified.Kind)
			assert.ErrorIs(t, classified, tt.err)
		})
	}
}

func TestClassifyOpenAIError(t *testing.T) {
	assert.Equal(t, KindRateLimit, classifyOpenAIError(&openai.Error{StatusCode: 429}).Kind)
	assert.Equal(t, KindTransport, classifyOpenAIError(&openai.Error{StatusCode: 401}).Kind)
	assert.Equal(t, KindTransport, classifyOpenAIError(errors.New("dial tcp")).Kind)
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("no candidates in response")
	err := &Error{Kind: KindMalformed, Message: "unusable Gemini response", Cause: cause}

	assert.Equal(t, "unusable Gemini response: no candidates in response", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindMalformed, KindOf(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsRateLimit(err))
	assert.False(t, IsRateLimit(nil))
}
