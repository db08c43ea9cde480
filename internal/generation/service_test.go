package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docstudio/internal/llm"
	"github.com/jonathan/docstudio/internal/types"
)

type fakeClient struct {
	text     string
	err      error
	requests []llm.Request
}

func (f *fakeClient) Generate(_ context.Context, req llm.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeClient) Close() error { return nil }

func newTestService(client llm.Client) *Service {
	return New(client, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestGenerate_DocumentRequest(t *testing.T) {
	client := &fakeClient{text: "# Report\nBody"}
	svc := newTestService(client)

	text, err := svc.Generate(context.Background(), types.GenerationRequest{
		Prompt:   "Quarterly report",
		Kind:     types.KindDOCX,
		Language: "German",
		Tone:     "Formal",
	})

	require.NoError(t, err)
	assert.Equal(t, "# Report\nBody", text)
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, "Quarterly report", req.Prompt)
	assert.Equal(t, DocumentTemperature, req.Temperature)
	assert.Equal(t, TopP, req.TopP)
	assert.Equal(t, llm.FormatText, req.ResponseFormat)
	assert.True(t, len(req.SystemInstruction) > 0)
	assert.Contains(t, req.SystemInstruction, "You are an expert document creator.")
	assert.Contains(t, req.SystemInstruction,
		"Use headings and paragraphs where appropriate. The document must be written in German. The tone of the document should be Formal.")
}

func TestGenerate_SpreadsheetRequest(t *testing.T) {
	client := &fakeClient{text: `[{"a":1}]`}
	svc := newTestService(client)

	_, err := svc.Generate(context.Background(), types.GenerationRequest{
		Prompt: "Sales by region",
		Kind:   types.KindXLSX,
	})

	require.NoError(t, err)
	req := client.requests[0]
	assert.Equal(t, SpreadsheetTemperature, req.Temperature)
	assert.Equal(t, llm.FormatJSON, req.ResponseFormat)
	assert.Contains(t, req.SystemInstruction, "generate a JSON array of objects")
	assert.Contains(t, req.SystemInstruction, "written in English. The tone of the document should be Professional.")
}

func TestGenerate_EmptyPromptRejectedWithoutCall(t *testing.T) {
	client := &fakeClient{text: "unused"}
	svc := newTestService(client)

	for _, prompt := range []string{"", "   \n\t"} {
		_, err := svc.Generate(context.Background(), types.GenerationRequest{Prompt: prompt, Kind: types.KindText})

		var userErr *UserError
		require.ErrorAs(t, err, &userErr)
		assert.Equal(t, OpGenerate, userErr.Op)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Empty(t, client.requests)
}

func TestGenerate_UnknownLanguageRejected(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client)

	_, err := svc.Generate(context.Background(), types.GenerationRequest{Prompt: "x", Kind: types.KindText, Language: "Klingon"})

	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.Empty(t, client.requests)
}

func TestGenerate_RateLimitExhaustedIsBusy(t *testing.T) {
	exhausted := &llm.Error{
		Kind:    llm.KindRateLimit,
		Message: "rate limited on all 3 attempts",
		Cause:   fmt.Errorf("%w: %w", llm.ErrRateLimitExhausted, errors.New("429")),
	}
	svc := newTestService(&fakeClient{err: exhausted})

	_, err := svc.Generate(context.Background(), types.GenerationRequest{Prompt: "x", Kind: types.KindText})

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.Equal(t, BusyMessage, err.Error())
	assert.True(t, userErr.IsBusy())
	assert.ErrorIs(t, err, llm.ErrRateLimitExhausted)
}

func TestOperations_FailureMessages(t *testing.T) {
	cause := &llm.Error{Kind: llm.KindTransport, Message: "failed to generate content", Cause: errors.New("connection refused")}
	svc := newTestService(&fakeClient{err: cause})
	ctx := context.Background()

	_, err := svc.Generate(ctx, types.GenerationRequest{Prompt: "x", Kind: types.KindPDF})
	assert.EqualError(t, err, "Failed to generate document: failed to generate content: connection refused")

	_, err = svc.Analyze(ctx, types.AnalysisRequest{Content: "doc", Kind: types.AnalysisSummary})
	assert.EqualError(t, err, "Failed to analyze document: failed to generate content: connection refused")

	_, err = svc.Rewrite(ctx, types.RewriteRequest{Content: "doc", Kind: types.RewriteShorten})
	assert.EqualError(t, err, "Failed to rewrite document: failed to generate content: connection refused")

	var userErr *UserError
	require.ErrorAs(t, err, &userErr)
	assert.False(t, userErr.IsBusy())
	assert.Equal(t, llm.KindTransport, llm.KindOf(err))
}

func TestAnalyze_Request(t *testing.T) {
	tests := []struct {
		kind     types.AnalysisKind
		contains string
	}{
		{types.AnalysisSummary, "Provide a concise summary"},
		{types.AnalysisClarity, "for clarity and readability"},
		{types.AnalysisImprovements, "actionable suggestions for improvement"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			client := &fakeClient{text: "analysis"}
			svc := newTestService(client)

			text, err := svc.Analyze(context.Background(), types.AnalysisRequest{
				Content: "The document", Kind: tt.kind, Language: "Spanish", Tone: "Casual",
			})

			require.NoError(t, err)
			assert.Equal(t, "analysis", text)
			req := client.requests[0]
			assert.Equal(t, "The document", req.Prompt)
			assert.Equal(t, AnalysisTemperature, req.Temperature)
			assert.Contains(t, req.SystemInstruction, tt.contains)
			assert.Contains(t, req.SystemInstruction,
				" The analysis and any suggestions should be written in Spanish and maintain a Casual tone.")
		})
	}
}

func TestRewrite_Request(t *testing.T) {
	tests := []struct {
		kind     types.RewriteKind
		contains string
	}{
		{types.RewriteShorten, "more concise and to the point"},
		{types.RewriteLengthen, "expanding on the key points"},
		{types.RewriteFormal, "more formal and professional tone"},
		{types.RewriteSimplify, "simpler and easier to understand"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			client := &fakeClient{text: "rewritten"}
			svc := newTestService(client)

			_, err := svc.Rewrite(context.Background(), types.RewriteRequest{Content: "c", Kind: tt.kind})

			require.NoError(t, err)
			req := client.requests[0]
			assert.Equal(t, RewriteTemperature, req.Temperature)
			assert.Contains(t, req.SystemInstruction, tt.contains)
			assert.Contains(t, req.SystemInstruction,
				"must be in English and maintain a Professional tone, unless the rewrite instruction specifically asks to change the tone.")
		})
	}
}

func TestAnalyze_RejectsUnknownKindAndEmptyContent(t *testing.T) {
	client := &fakeClient{}
	svc := newTestService(client)

	_, err := svc.Analyze(context.Background(), types.AnalysisRequest{Content: "c", Kind: "poem"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Rewrite(context.Background(), types.RewriteRequest{Content: " ", Kind: types.RewriteFormal})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Empty(t, client.requests)
}

func TestGenerateResult_StampsSettings(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := New(&fakeClient{text: "body"},
		WithClock(func() time.Time { return fixed }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	bundle := types.CustomizationBundle{HeaderText: "ACME", FontSize: 14}

	result, err := svc.GenerateResult(context.Background(), types.GenerationRequest{Prompt: "x", Kind: "word"}, bundle)

	require.NoError(t, err)
	assert.Equal(t, "body", result.Content)
	assert.Equal(t, types.KindDOCX, result.Kind)
	assert.Equal(t, fixed, result.CreatedAt)
	assert.Equal(t, types.DefaultLanguage, result.Language)
	assert.Equal(t, types.DefaultTone, result.Tone)
	assert.Equal(t, bundle, result.Customization)
}

func TestWithModel_OverridesRequestModel(t *testing.T) {
	client := &fakeClient{text: "ok"}
	svc := New(client, WithModel("gemini-2.5-pro"), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	_, err := svc.Generate(context.Background(), types.GenerationRequest{Prompt: "x", Kind: types.KindText})

	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", client.requests[0].Model)
}

func TestCheckInstructions_EveryKindHasTemplate(t *testing.T) {
	require.NoError(t, CheckInstructions())

	keys := InstructionKeys()
	assert.Len(t, keys, 5+len(types.AnalysisKinds)+len(types.RewriteKinds))
	assert.Contains(t, keys, "analyze-clarity")
	assert.Contains(t, keys, "rewrite-simplify")
}
