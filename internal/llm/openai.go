package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// OpenAIClient implements Client for OpenAI chat completions
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. The SDK's own retries are disabled; RetryingClient owns retry policy.
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Generate sends req as a system + user chat completion. Failures are returned as *Error.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = c.config.ModelOrDefault()
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(req.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.TopP > 0 {
		params.TopP = openai.Float(float64(req.TopP))
	}
	// FormatJSON is not mapped to response_format: json_object mode only returns a top-level
	// object, and tabular output is a top-level array. The instruction asks for the array and
	// callers clean the reply with CleanJSONBlock.

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{Kind: KindMalformed, Message: "unusable OpenAI response", Cause: fmt.Errorf("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the OpenAI SDK holds no long-lived connections of its own.
func (c *OpenAIClient) Close() error {
	return nil
}
