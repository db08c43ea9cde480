package export

import (
	"bytes"
	"context"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/docstudio/internal/types"
)

// Page geometry in millimetres
const (
	pdfMargin          = 15.0
	pdfHeaderY         = 10.0
	pdfHeaderMinCursor = 20.0
	pdfFooterOffset    = 10.0
	pdfFooterReserve   = 10.0
	pdfLogoGap         = 10.0
	pdfChromeFontSize  = 10.0
	pdfLineHeightRatio = 1.15
	mmPerPoint         = 25.4 / 72
)

// PageNumberPlaceholder in footer text is replaced with the 1-indexed page number.
const PageNumberPlaceholder = "Page Number"

// PDFOptions tunes the PDF writer.
type PDFOptions struct {
	// Compress deflates page content streams.
	Compress bool
}

// DefaultPDFOptions returns compressed output.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{Compress: true}
}

// PDFEncoder lays out plain text on A4 pages using the PDF base fonts.
type PDFEncoder struct {
	opts Options
}

func (e *PDFEncoder) Format() types.OutputKind {
	return types.KindPDF
}

// PDFFontFamily maps a requested family onto a PDF base font. Families without a built-in
// equivalent fall back to helvetica.
func PDFFontFamily(family types.FontFamily) string {
	switch strings.ToLower(string(family)) {
	case "arial":
		return "helvetica"
	case "times new roman":
		return "times"
	case "courier new":
		return "courier"
	default:
		return "helvetica"
	}
}

// pdfLayout tracks the cursor while laying out pages.
type pdfLayout struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
	family    string
	header    string
	footer    string
	pageH     float64
	cursorY   float64
}

func (l *pdfLayout) renderHeader() {
	if l.header == "" {
		return
	}
	l.pdf.SetFont(l.family, "", pdfChromeFontSize)
	l.pdf.Text(pdfMargin, pdfHeaderY, l.translate(l.header))
	l.cursorY = max(l.cursorY, pdfHeaderMinCursor)
}

func (l *pdfLayout) renderFooter() {
	if l.footer == "" {
		return
	}
	text := strings.Replace(l.footer, PageNumberPlaceholder, strconv.Itoa(l.pdf.PageNo()), 1)
	l.pdf.SetFont(l.family, "", pdfChromeFontSize)
	l.pdf.Text(pdfMargin, l.pageH-pdfFooterOffset, l.translate(text))
}

// newPage finalizes the current page's footer and starts the next page with its header.
func (l *pdfLayout) newPage() {
	l.renderFooter()
	l.pdf.AddPage()
	l.cursorY = pdfMargin
	l.renderHeader()
}

func (e *PDFEncoder) Encode(ctx context.Context, content string, bundle types.CustomizationBundle) (*Artifact, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(e.opts.PDF.Compress)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetCreationDate(e.opts.Now())
	pdf.SetTitle(documentTitle(content), true)
	pdf.SetCreator("docstudio", true)

	pageW, pageH := pdf.GetPageSize()
	printableW := pageW - 2*pdfMargin
	layout := &pdfLayout{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		family:    PDFFontFamily(bundle.FontFamilyOrDefault()),
		header:    bundle.HeaderText,
		footer:    bundle.FooterText,
		pageH:     pageH,
		cursorY:   pdfMargin,
	}

	pdf.AddPage()
	layout.renderHeader()

	if bundle.HasLogo() {
		e.placeLogo(layout, bundle.Logo, printableW)
	}

	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Format: types.KindPDF, Message: "export cancelled", Cause: err}
	}

	size := float64(bundle.FontSizeOrDefault())
	lineHeight := size * pdfLineHeightRatio * mmPerPoint
	pdf.SetFont(layout.family, "", size)

	body := layout.translate(strings.ReplaceAll(content, "\r\n", "\n"))
	for _, line := range pdf.SplitLines([]byte(body), printableW) {
		if layout.cursorY+lineHeight > pageH-pdfMargin-pdfFooterReserve {
			layout.newPage()
			pdf.SetFont(layout.family, "", size)
		}
		pdf.Text(pdfMargin, layout.cursorY, string(line))
		layout.cursorY += lineHeight
	}
	layout.renderFooter()

	if err := pdf.Error(); err != nil {
		return nil, &EncodeError{Format: types.KindPDF, Message: "failed to lay out PDF", Cause: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &EncodeError{Format: types.KindPDF, Message: "failed to write PDF", Cause: err}
	}

	return &Artifact{
		Filename:    DefaultFilename(types.KindPDF),
		ContentType: ContentTypePDF,
		Data:        buf.Bytes(),
	}, nil
}

// placeLogo draws the logo at the cursor, scaled to the printable width at 96 dpi.
// A logo that cannot be decoded is logged and skipped.
func (e *PDFEncoder) placeLogo(layout *pdfLayout, img *types.Image, printableW float64) {
	logo, err := prepareLogo(img)
	if err != nil {
		e.opts.Logger.Warn("skipping logo in pdf export", "error", err)
		return
	}

	pdf := layout.pdf
	name, options, ok := registerLogo(pdf, "logo", logo)
	if !ok {
		// fpdf rejects some valid PNGs (interlaced, 16-bit); retry with a plain 8-bit encoding.
		flat, err := flattenToPNG(logo)
		if err != nil {
			e.opts.Logger.Warn("skipping logo in pdf export", "error", err)
			return
		}
		name, options, ok = registerLogo(pdf, "logo-flat", flat)
		if !ok {
			e.opts.Logger.Warn("skipping logo in pdf export", "format", logo.Format)
			return
		}
	}

	pxToMM := 25.4 / pixelsPerInch
	width, height := scaleToWidth(float64(logo.Width)*pxToMM, float64(logo.Height)*pxToMM, printableW)

	if layout.cursorY+height > layout.pageH-pdfMargin {
		layout.newPage()
	}

	pdf.ImageOptions(name, pdfMargin, layout.cursorY, width, height, false, options, 0, "")
	layout.cursorY += height + pdfLogoGap
}

// registerLogo adds the image to the document resources. On failure the document error is cleared.
func registerLogo(pdf *fpdf.Fpdf, name string, logo *preparedLogo) (string, fpdf.ImageOptions, bool) {
	options := fpdf.ImageOptions{ImageType: strings.ToUpper(logo.Format)}
	info := pdf.RegisterImageOptionsReader(name, options, bytes.NewReader(logo.Data))
	if info == nil || pdf.Err() {
		pdf.ClearError()
		return "", options, false
	}
	return name, options, true
}
