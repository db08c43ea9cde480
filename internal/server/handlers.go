package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/jonathan/docstudio/internal/export"
	"github.com/jonathan/docstudio/internal/generation"
	"github.com/jonathan/docstudio/internal/preview"
	"github.com/jonathan/docstudio/internal/types"
)

// GenerateRequest represents the request body for /generate
type GenerateRequest struct {
	Prompt        string                    `json:"prompt"`
	Kind          types.OutputKind          `json:"kind"`
	Language      types.Language            `json:"language,omitempty"`
	Tone          types.Tone                `json:"tone,omitempty"`
	Customization types.CustomizationBundle `json:"customization"`
}

// GenerateResponse represents the response for /generate
type GenerateResponse struct {
	Token uint64             `json:"token"`
	Entry types.HistoryEntry `json:"entry"`
}

// ContentRequest represents the request body for /analyze and /rewrite
type ContentRequest struct {
	Content  string         `json:"content"`
	Kind     string         `json:"kind"`
	Language types.Language `json:"language,omitempty"`
	Tone     types.Tone     `json:"tone,omitempty"`
}

// ContentResponse represents the response for /analyze and /rewrite
type ContentResponse struct {
	Result string `json:"result"`
}

// ExportRequest represents the request body for /export/{format}
type ExportRequest struct {
	Content       string                    `json:"content"`
	Customization types.CustomizationBundle `json:"customization"`
	Filename      string                    `json:"filename,omitempty"`
}

// PreviewRequest represents the request body for /preview
type PreviewRequest struct {
	Content string           `json:"content"`
	Kind    types.OutputKind `json:"kind"`
}

// PreviewResponse represents the response for /preview
type PreviewResponse struct {
	HTML  string `json:"html"`
	Words int    `json:"words"`
}

// HistoryResponse represents the response for GET /history
type HistoryResponse struct {
	Entries []types.HistoryEntry `json:"entries"`
}

// OptionsResponse lists every selectable option
type OptionsResponse struct {
	Kinds         []types.OutputKind   `json:"kinds"`
	Languages     []types.Language     `json:"languages"`
	Tones         []types.Tone         `json:"tones"`
	FontFamilies  []types.FontFamily   `json:"font_families"`
	FontSizes     []types.FontSize     `json:"font_sizes"`
	AnalysisKinds []types.AnalysisKind `json:"analysis_kinds"`
	RewriteKinds  []types.RewriteKind  `json:"rewrite_kinds"`
	MaxLogoBytes  int64                `json:"max_logo_bytes"`
}

// decodeJSON reads a JSON body no larger than the logo limit plus room for text.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	limit := s.maxLogoBytes*4/3 + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrValidation{Field: "body", Message: "request body is too large"}
		}
		return &ErrValidation{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return nil
}

// checkCustomization enforces the logo size limit and supported font settings.
func (s *Server) checkCustomization(bundle types.CustomizationBundle) error {
	if bundle.Logo != nil && int64(len(bundle.Logo.Data)) > s.maxLogoBytes {
		return &ErrValidation{
			Field:   "customization.logo",
			Message: fmt.Sprintf("logo exceeds %d bytes", s.maxLogoBytes),
		}
	}
	if err := types.ValidateCustomization(bundle); err != nil {
		return &ErrValidation{Field: "customization", Message: err.Error()}
	}
	return nil
}

// handleGenerate generates content and records it in history. When the client names a
// session, a response overtaken by a newer request from that session is answered with 409
// and is not recorded.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.checkCustomization(req.Customization); err != nil {
		s.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	var tracker *generation.Tracker
	var token generation.Token
	if session := r.Header.Get(SessionHeader); session != "" {
		tracker, token, ctx = s.sessions.Begin(ctx, session)
	}

	result, err := s.generator.GenerateResult(ctx, types.GenerationRequest{
		Prompt:   req.Prompt,
		Kind:     req.Kind,
		Language: req.Language,
		Tone:     req.Tone,
	}, req.Customization)

	if tracker != nil && !tracker.Finish(token) {
		s.logger.Info("dropping superseded generation", "token", token, "latest", tracker.Latest())
		s.failure(w, r, ErrSuperseded)
		return
	}
	if err != nil {
		s.failure(w, r, err)
		return
	}

	entry := s.history.Add(r.Context(), *result)
	s.jsonResponse(w, http.StatusOK, GenerateResponse{Token: uint64(token), Entry: entry})
}

// handleAnalyze analyzes previously generated content
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	text, err := s.generator.Analyze(ctx, types.AnalysisRequest{
		Content:  req.Content,
		Kind:     types.AnalysisKind(req.Kind),
		Language: req.Language,
		Tone:     req.Tone,
	})
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ContentResponse{Result: text})
}

// handleRewrite rewrites previously generated content
func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req ContentRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	text, err := s.generator.Rewrite(ctx, types.RewriteRequest{
		Content:  req.Content,
		Kind:     types.RewriteKind(req.Kind),
		Language: req.Language,
		Tone:     req.Tone,
	})
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ContentResponse{Result: text})
}

// handleExport encodes content into the requested format and returns it as an attachment.
// No body bytes are written unless encoding succeeded.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := types.ParseOutputKind(r.PathValue("format"))
	if err != nil {
		s.failure(w, r, &ErrValidation{Field: "format", Message: err.Error()})
		return
	}

	var req ExportRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := s.checkCustomization(req.Customization); err != nil {
		s.failure(w, r, err)
		return
	}

	artifact, err := export.Encode(r.Context(), kind, req.Content, req.Customization, req.Filename, s.exportOptions...)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.logger.Warn("failed to write export", "format", kind, "error", err)
	}
}

// handlePreview renders content as HTML
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	kind := types.KindText
	if req.Kind != "" {
		parsed, err := types.ParseOutputKind(string(req.Kind))
		if err != nil {
			s.failure(w, r, &ErrValidation{Field: "kind", Message: err.Error()})
			return
		}
		kind = parsed
	}

	html, err := preview.Render(kind, req.Content)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, PreviewResponse{HTML: html, Words: preview.WordCount(req.Content)})
}

// handleListHistory returns recorded results, newest first
func (s *Server) handleListHistory(w http.ResponseWriter, _ *http.Request) {
	entries := s.history.List()
	if entries == nil {
		entries = []types.HistoryEntry{}
	}
	s.jsonResponse(w, http.StatusOK, HistoryResponse{Entries: entries})
}

// handleGetHistory returns one entry, including its customization, for restoring
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	entry, err := s.history.Get(r.PathValue("id"))
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, entry)
}

// handleClearHistory removes every entry
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.history.Clear(r.Context()); err != nil {
		s.failure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleOptions lists the supported kinds, languages, tones and fonts
func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, OptionsResponse{
		Kinds:         types.OutputKinds,
		Languages:     types.Languages,
		Tones:         types.Tones,
		FontFamilies:  types.FontFamilies,
		FontSizes:     types.FontSizes,
		AnalysisKinds: types.AnalysisKinds,
		RewriteKinds:  types.RewriteKinds,
		MaxLogoBytes:  s.maxLogoBytes,
	})
}
