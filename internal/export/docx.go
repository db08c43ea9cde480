package export

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"

	"github.com/jonathan/docstudio/internal/rendering"
	"github.com/jonathan/docstudio/internal/types"
)

const (
	// docxMaxLogoWidth is the widest a logo is displayed, in pixels.
	docxMaxLogoWidth = 450
	emuPerPixel      = 9525
)

// DOCXEncoder writes a WordprocessingML package: one paragraph per content line, optional
// centered logo, optional header and footer on every page.
type DOCXEncoder struct {
	opts Options
}

func (e *DOCXEncoder) Format() types.OutputKind {
	return types.KindDOCX
}

func (e *DOCXEncoder) Encode(ctx context.Context, content string, bundle types.CustomizationBundle) (*Artifact, error) {
	doc := rendering.Document{
		Title:   documentTitle(content),
		Created: e.opts.Now(),
		Style: rendering.RunStyle{
			Font:       string(bundle.FontFamilyOrDefault()),
			HalfPoints: bundle.FontSizeOrDefault().HalfPoints(),
		},
		Paragraphs: splitLines(content),
		Header:     bundle.HeaderText,
		Footer:     bundle.FooterText,
	}

	var logo *preparedLogo
	if bundle.HasLogo() {
		prepared, err := prepareLogo(bundle.Logo)
		if err != nil {
			e.opts.Logger.Warn("skipping logo in docx export", "error", err)
		} else {
			logo = prepared
			width, height := scaleToWidth(float64(logo.Width), float64(logo.Height), docxMaxLogoWidth)
			doc.Logo = &rendering.Logo{
				Extension:   logo.Format,
				ContentType: logo.contentType(),
				WidthEMU:    int64(width * emuPerPixel),
				HeightEMU:   int64(height * emuPerPixel),
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Format: types.KindDOCX, Message: "export cancelled", Cause: err}
	}

	parts, err := rendering.Render(doc)
	if err != nil {
		return nil, &EncodeError{Format: types.KindDOCX, Message: "failed to render document parts", Cause: err}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, part := range parts {
		if err := writeZipEntry(zw, part.Name, part.Data); err != nil {
			return nil, &EncodeError{Format: types.KindDOCX, Message: "failed to write package", Cause: err}
		}
	}
	if doc.Logo != nil {
		if err := writeZipEntry(zw, doc.Logo.MediaPart(), logo.Data); err != nil {
			return nil, &EncodeError{Format: types.KindDOCX, Message: "failed to write logo", Cause: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &EncodeError{Format: types.KindDOCX, Message: "failed to write package", Cause: err}
	}

	return &Artifact{
		Filename:    DefaultFilename(types.KindDOCX),
		ContentType: ContentTypeDOCX,
		Data:        buf.Bytes(),
	}, nil
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// splitLines splits content into lines, treating CRLF as LF. Empty content is one empty line.
func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// documentTitle returns the first non-empty line, trimmed of markdown heading markers.
func documentTitle(content string) string {
	for _, line := range splitLines(content) {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			if len([]rune(line)) > 120 {
				line = string([]rune(line)[:120])
			}
			return line
		}
	}
	return "Document"
}
