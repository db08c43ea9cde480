// Package generation turns user requests into provider calls and maps failures to user-facing messages.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/metrics"
	"github.com/jonathan/docstudio/internal/prompts"
	"github.com/jonathan/docstudio/internal/types"
)

const instructionsFile = "documents.json"

// Sampling settings per operation
const (
	TopP                   float32 = 0.95
	DocumentTemperature    float32 = 0.7
	SpreadsheetTemperature float32 = 0.2
	AnalysisTemperature    float32 = 0.6
	RewriteTemperature     float32 = 0.7
)

// Service issues generate, analyze and rewrite calls.
type Service struct {
	client llm.Client
	model  string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModel overrides the client's configured model for every call.
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// WithClock sets the clock used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a Service. client should normally be an *llm.RetryingClient.
func New(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate produces document text, or a JSON array of row objects when the kind is tabular.
func (s *Service) Generate(ctx context.Context, req types.GenerationRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", s.reject(OpGenerate, err)
	}
	kind, _ := types.ParseOutputKind(string(req.Kind))

	instructionKey := "generate-document"
	temperature := DocumentTemperature
	format := llm.FormatText
	if kind.IsTabular() {
		instructionKey = "generate-spreadsheet"
		temperature = SpreadsheetTemperature
		format = llm.FormatJSON
	}

	instruction, err := s.instruction(instructionKey, "generate-suffix", req.Language, req.Tone)
	if err != nil {
		return "", s.fail(OpGenerate, string(kind), err)
	}

	return s.call(ctx, OpGenerate, string(kind), llm.Request{
		Model:             s.model,
		Prompt:            req.Prompt,
		SystemInstruction: instruction,
		Temperature:       temperature,
		TopP:              TopP,
		ResponseFormat:    format,
	})
}

// GenerateResult runs Generate and stamps the content with its settings and a customization snapshot.
func (s *Service) GenerateResult(ctx context.Context, req types.GenerationRequest, bundle types.CustomizationBundle) (*types.GenerationResult, error) {
	content, err := s.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	kind, _ := types.ParseOutputKind(string(req.Kind))
	return &types.GenerationResult{
		Content:       content,
		Kind:          kind,
		CreatedAt:     s.now().UTC(),
		Language:      req.Language.OrDefault(),
		Tone:          req.Tone.OrDefault(),
		Customization: bundle,
	}, nil
}

// Analyze returns a summary, clarity review or improvement list for content.
func (s *Service) Analyze(ctx context.Context, req types.AnalysisRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", s.reject(OpAnalyze, err)
	}

	instruction, err := s.instruction("analyze-"+string(req.Kind), "analyze-suffix", req.Language, req.Tone)
	if err != nil {
		return "", s.fail(OpAnalyze, string(req.Kind), err)
	}

	return s.call(ctx, OpAnalyze, string(req.Kind), llm.Request{
		Model:             s.model,
		Prompt:            req.Content,
		SystemInstruction: instruction,
		Temperature:       AnalysisTemperature,
		TopP:              TopP,
		ResponseFormat:    llm.FormatText,
	})
}

// Rewrite returns content rewritten according to the rewrite kind.
func (s *Service) Rewrite(ctx context.Context, req types.RewriteRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", s.reject(OpRewrite, err)
	}

	instruction, err := s.instruction("rewrite-"+string(req.Kind), "rewrite-suffix", req.Language, req.Tone)
	if err != nil {
		return "", s.fail(OpRewrite, string(req.Kind), err)
	}

	return s.call(ctx, OpRewrite, string(req.Kind), llm.Request{
		Model:             s.model,
		Prompt:            req.Content,
		SystemInstruction: instruction,
		Temperature:       RewriteTemperature,
		TopP:              TopP,
		ResponseFormat:    llm.FormatText,
	})
}

// InstructionKeys lists every template key the service can ask for.
func InstructionKeys() []string {
	keys := []string{"generate-document", "generate-spreadsheet", "generate-suffix", "analyze-suffix", "rewrite-suffix"}
	for _, k := range types.AnalysisKinds {
		keys = append(keys, "analyze-"+string(k))
	}
	for _, k := range types.RewriteKinds {
		keys = append(keys, "rewrite-"+string(k))
	}
	return keys
}

// CheckInstructions fails when a supported kind has no instruction template.
func CheckInstructions() error {
	if err := prompts.Require(instructionsFile, InstructionKeys()...); err != nil {
		return fmt.Errorf("instruction templates incomplete: %w", err)
	}
	return nil
}

// instruction builds the system instruction: the base template followed by the language/tone suffix.
func (s *Service) instruction(baseKey, suffixKey string, language types.Language, tone types.Tone) (string, error) {
	base, err := prompts.Get(instructionsFile, baseKey)
	if err != nil {
		return "", fmt.Errorf("failed to load instruction: %w", err)
	}
	suffix, err := prompts.Render(instructionsFile, suffixKey, map[string]string{
		"Language": string(language.OrDefault()),
		"Tone":     string(tone.OrDefault()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to load instruction: %w", err)
	}
	return base + suffix, nil
}

func (s *Service) call(ctx context.Context, op Op, kind string, req llm.Request) (string, error) {
	start := time.Now()
	text, err := s.client.Generate(ctx, req)
	if err != nil {
		return "", s.fail(op, kind, err)
	}

	metrics.GenerationRequest(string(op), kind, "ok")
	s.logger.Info("generation completed",
		"op", op, "kind", kind, "chars", len(text), "duration", time.Since(start))
	return text, nil
}

func (s *Service) fail(op Op, kind string, err error) error {
	userErr := newUserError(op, err)
	status := "error"
	if userErr.IsBusy() {
		status = "busy"
	}
	metrics.GenerationRequest(string(op), kind, status)
	s.logger.Error("generation failed", "op", op, "kind", kind, "error", err)
	return userErr
}

// reject does not label by kind; the kind is unvalidated user input.
func (s *Service) reject(op Op, err error) error {
	metrics.GenerationRequest(string(op), "", "invalid")
	return newValidationError(op, err)
}
