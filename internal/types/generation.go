package types

import (
	"time"
)

// GenerationRequest is a single document-generation call. It is built fresh per call.
type GenerationRequest struct {
	Prompt   string     `json:"prompt" validate:"required,notblank"`
	Kind     OutputKind `json:"kind" validate:"required,outputkind"`
	Language Language   `json:"language,omitempty" validate:"omitempty,language"`
	Tone     Tone       `json:"tone,omitempty" validate:"omitempty,tone"`
}

// Validate checks the request and fills in default language and tone.
func (r *GenerationRequest) Validate() error {
	r.Language = r.Language.OrDefault()
	r.Tone = r.Tone.OrDefault()
	return validate.Struct(r)
}

// AnalysisRequest asks for an analysis of previously generated content.
type AnalysisRequest struct {
	Content  string       `json:"content" validate:"required,notblank"`
	Kind     AnalysisKind `json:"kind" validate:"required,analysiskind"`
	Language Language     `json:"language,omitempty" validate:"omitempty,language"`
	Tone     Tone         `json:"tone,omitempty" validate:"omitempty,tone"`
}

// Validate checks the request and fills in default language and tone.
func (r *AnalysisRequest) Validate() error {
	r.Language = r.Language.OrDefault()
	r.Tone = r.Tone.OrDefault()
	return validate.Struct(r)
}

// RewriteRequest asks for a rewrite of previously generated content.
type RewriteRequest struct {
	Content  string      `json:"content" validate:"required,notblank"`
	Kind     RewriteKind `json:"kind" validate:"required,rewritekind"`
	Language Language    `json:"language,omitempty" validate:"omitempty,language"`
	Tone     Tone        `json:"tone,omitempty" validate:"omitempty,tone"`
}

// Validate checks the request and fills in default language and tone.
func (r *RewriteRequest) Validate() error {
	r.Language = r.Language.OrDefault()
	r.Tone = r.Tone.OrDefault()
	return validate.Struct(r)
}

// GenerationResult is generated content plus the settings it was produced with.
// For KindXLSX, Content holds the JSON-encoded array of row objects as returned by the model.
type GenerationResult struct {
	Content       string              `json:"content"`
	Kind          OutputKind          `json:"document_type"`
	CreatedAt     time.Time           `json:"timestamp"`
	Language      Language            `json:"language,omitempty"`
	Tone          Tone                `json:"tone,omitempty"`
	Customization CustomizationBundle `json:"customization"`
}

// HistoryEntry is a recorded GenerationResult. Entries are never mutated after insertion.
type HistoryEntry struct {
	ID       string           `json:"id"`
	Sequence int64            `json:"sequence"`
	Result   GenerationResult `json:"result"`
}
