// Package types provides type definitions for structured data used throughout the docstudio system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"
)

// OutputKind selects both the instruction template used for generation and the export encoder.
type OutputKind string

const (
	KindText OutputKind = "text"
	KindDOCX OutputKind = "docx"
	KindXLSX OutputKind = "xlsx"
	KindPDF  OutputKind = "pdf"
)

// OutputKinds lists every supported output kind in display order.
var OutputKinds = []OutputKind{KindText, KindDOCX, KindPDF, KindXLSX}

// IsTabular reports whether the kind expects a JSON array of row objects.
func (k OutputKind) IsTabular() bool {
	return k == KindXLSX
}

// SupportsCustomization reports whether header/footer/logo/font settings apply to the kind.
func (k OutputKind) SupportsCustomization() bool {
	return k == KindDOCX || k == KindPDF
}

// Extension returns the file extension (without dot) used for exported artifacts.
func (k OutputKind) Extension() string {
	if k == KindText {
		return "txt"
	}
	return string(k)
}

// ParseOutputKind parses a kind name, accepting a few common aliases.
func ParseOutputKind(s string) (OutputKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "txt", "plain":
		return KindText, nil
	case "docx", "word":
		return KindDOCX, nil
	case "xlsx", "excel", "spreadsheet":
		return KindXLSX, nil
	case "pdf":
		return KindPDF, nil
	}
	return "", fmt.Errorf("unsupported output kind %q", s)
}

// Language is the natural language generated content is written in.
type Language string

// Languages lists the supported target languages. The first entry is the default.
var Languages = []Language{
	"English", "Spanish", "French", "German", "Italian", "Portuguese",
	"Dutch", "Russian", "Japanese", "Chinese", "Korean",
}

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage Language = "English"

// Tone is the register generated content is written in.
type Tone string

// Tones lists the supported tones. The first entry is the default.
var Tones = []Tone{
	"Professional", "Casual", "Persuasive", "Academic",
	"Creative", "Technical", "Formal", "Friendly",
}

// DefaultTone is used when a request does not name one.
const DefaultTone Tone = "Professional"

// IsValid reports whether l is one of Languages.
func (l Language) IsValid() bool {
	for _, known := range Languages {
		if l == known {
			return true
		}
	}
	return false
}

// OrDefault returns DefaultLanguage when l is empty.
func (l Language) OrDefault() Language {
	if l == "" {
		return DefaultLanguage
	}
	return l
}

// IsValid reports whether t is one of Tones.
func (t Tone) IsValid() bool {
	for _, known := range Tones {
		if t == known {
			return true
		}
	}
	return false
}

// OrDefault returns DefaultTone when t is empty.
func (t Tone) OrDefault() Tone {
	if t == "" {
		return DefaultTone
	}
	return t
}

// FontFamily is a font family name as chosen in the customization panel.
type FontFamily string

const (
	FontCalibri       FontFamily = "Calibri"
	FontArial         FontFamily = "Arial"
	FontTimesNewRoman FontFamily = "Times New Roman"
	FontCourierNew    FontFamily = "Courier New"
	FontGeorgia       FontFamily = "Georgia"
	FontVerdana       FontFamily = "Verdana"
)

// Defaults applied when a customization bundle leaves the font unset.
const (
	DefaultFontFamily          = FontCalibri
	DefaultFontSize   FontSize = 12
)

// FontFamilies lists the supported font families. The first entry is the default.
var FontFamilies = []FontFamily{
	FontCalibri, FontArial, FontTimesNewRoman, FontCourierNew, FontGeorgia, FontVerdana,
}

// FontSize is a font size in points.
type FontSize int

// FontSizes lists the supported font sizes in points.
var FontSizes = []FontSize{10, 11, 12, 14, 16, 18}

// IsValid reports whether f is one of FontFamilies.
func (f FontFamily) IsValid() bool {
	for _, known := range FontFamilies {
		if f == known {
			return true
		}
	}
	return false
}

// IsValid reports whether s is one of FontSizes.
func (s FontSize) IsValid() bool {
	for _, known := range FontSizes {
		if s == known {
			return true
		}
	}
	return false
}

// HalfPoints returns the size in half-points, the unit used by WordprocessingML.
func (s FontSize) HalfPoints() int {
	return int(s) * 2
}

// AnalysisKind selects an analysis instruction template.
type AnalysisKind string

const (
	AnalysisSummary      AnalysisKind = "summary"
	AnalysisClarity      AnalysisKind = "clarity"
	AnalysisImprovements AnalysisKind = "improvements"
)

// AnalysisKinds lists the supported analysis kinds.
var AnalysisKinds = []AnalysisKind{AnalysisSummary, AnalysisClarity, AnalysisImprovements}

// IsValid reports whether k is one of AnalysisKinds.
func (k AnalysisKind) IsValid() bool {
	for _, known := range AnalysisKinds {
		if k == known {
			return true
		}
	}
	return false
}

// RewriteKind selects a rewrite instruction template.
type RewriteKind string

const (
	RewriteShorten  RewriteKind = "shorten"
	RewriteLengthen RewriteKind = "lengthen"
	RewriteFormal   RewriteKind = "formal"
	RewriteSimplify RewriteKind = "simplify"
)

// RewriteKinds lists the supported rewrite kinds.
var RewriteKinds = []RewriteKind{RewriteShorten, RewriteLengthen, RewriteFormal, RewriteSimplify}

// IsValid reports whether k is one of RewriteKinds.
func (k RewriteKind) IsValid() bool {
	for _, known := range RewriteKinds {
		if k == known {
			return true
		}
	}
	return false
}
