// Package export encodes generated content into downloadable artifacts: Word, PDF, spreadsheet and plain text.
// Every encoder works entirely in memory and returns either a complete artifact or an error, never both.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/docstudio/internal/metrics"
	"github.com/jonathan/docstudio/internal/types"
)

// MIME types of produced artifacts
const (
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeText = "text/plain; charset=utf-8"
)

// Artifact is an encoded file ready to be delivered.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encoder turns content plus a customization bundle into an artifact.
type Encoder interface {
	Format() types.OutputKind
	Encode(ctx context.Context, content string, bundle types.CustomizationBundle) (*Artifact, error)
}

// Options are shared by all encoders.
type Options struct {
	Logger *slog.Logger
	PDF    PDFOptions
	Now    func() time.Time
}

// Option configures encoders built by ForKind.
type Option func(*Options)

// WithLogger sets the logger used for non-fatal problems such as an unreadable logo.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithPDFOptions sets PDF-specific options.
func WithPDFOptions(p PDFOptions) Option {
	return func(o *Options) {
		o.PDF = p
	}
}

// WithClock sets the clock used for document metadata.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

func buildOptions(opts []Option) Options {
	o := Options{
		Logger: slog.Default(),
		PDF:    DefaultPDFOptions(),
		Now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ForKind returns the encoder for kind.
func ForKind(kind types.OutputKind, opts ...Option) (Encoder, error) {
	o := buildOptions(opts)
	switch kind {
	case types.KindDOCX:
		return &DOCXEncoder{opts: o}, nil
	case types.KindPDF:
		return &PDFEncoder{opts: o}, nil
	case types.KindXLSX:
		return &XLSXEncoder{opts: o}, nil
	case types.KindText:
		return &TextEncoder{}, nil
	}
	return nil, fmt.Errorf("no encoder for output kind %q", kind)
}

// DefaultFilename returns the download name used when the caller does not supply one.
func DefaultFilename(kind types.OutputKind) string {
	if kind == types.KindXLSX {
		return "spreadsheet.xlsx"
	}
	return "document." + kind.Extension()
}

// SanitizeFilename reduces name to a safe base name with the extension of kind.
// An empty or unusable name yields DefaultFilename(kind).
func SanitizeFilename(name string, kind types.OutputKind) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(`"<>:|?*;`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, ". ")
	if name == "" || name == "/" {
		return DefaultFilename(kind)
	}

	ext := "." + kind.Extension()
	if !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}

// Encode runs the encoder for kind and names the artifact. An empty filename selects the default.
func Encode(ctx context.Context, kind types.OutputKind, content string, bundle types.CustomizationBundle, filename string, opts ...Option) (*Artifact, error) {
	enc, err := ForKind(kind, opts...)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	artifact, err := enc.Encode(ctx, content, bundle)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ExportTotal(status, string(kind))
	metrics.ExportDuration(status, string(kind), time.Since(start))
	if err != nil {
		return nil, err
	}

	artifact.Filename = SanitizeFilename(filename, kind)
	return artifact, nil
}

// EncodeAll encodes content into several formats concurrently. If any encoder fails, no artifacts are returned.
func EncodeAll(ctx context.Context, content string, bundle types.CustomizationBundle, kinds []types.OutputKind, opts ...Option) ([]*Artifact, error) {
	artifacts := make([]*Artifact, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			artifact, err := Encode(gctx, kind, content, bundle, "", opts...)
			if err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}
