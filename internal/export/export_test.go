package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docstudio/internal/rendering"
	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func testPNG(t *testing.T, w, h int) *types.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &types.Image{Data: buf.Bytes(), MIMEType: "image/png"}
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	files := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(body)
	}
	return files
}

func encode(t *testing.T, kind types.OutputKind, content string, bundle types.CustomizationBundle) *Artifact {
	t.Helper()
	enc, err := ForKind(kind, WithClock(fixedNow), WithPDFOptions(PDFOptions{Compress: false}))
	require.NoError(t, err)
	artifact, err := enc.Encode(context.Background(), content, bundle)
	require.NoError(t, err)
	require.NotNil(t, artifact)
	return artifact
}

func TestDOCXEncoder_Paragraphs(t *testing.T) {
	artifact := encode(t, types.KindDOCX, "Title\nSecond line\r\nThird", types.CustomizationBundle{})

	assert.Equal(t, ContentTypeDOCX, artifact.ContentType)
	assert.Equal(t, "document.docx", artifact.Filename)

	files := unzip(t, artifact.Data)
	require.Contains(t, files, rendering.PartDocument)
	require.Contains(t, files, rendering.PartContentTypes)
	assert.NotContains(t, files, rendering.PartHeader)
	assert.NotContains(t, files, rendering.PartFooter)

	doc := files[rendering.PartDocument]
	assert.Equal(t, 3, strings.Count(doc, "<w:p>"))
	assert.Contains(t, doc, "Second line")
	assert.Contains(t, doc, `w:ascii="Calibri"`)
	assert.Contains(t, doc, `<w:sz w:val="24"/>`)
}

func TestDOCXEncoder_Customization(t *testing.T) {
	bundle := types.CustomizationBundle{
		HeaderText: "ACME Corp",
		FooterText: "Page Number of report",
		FontFamily: types.FontGeorgia,
		FontSize:   14,
	}
	files := unzip(t, encode(t, types.KindDOCX, "Body", bundle).Data)

	require.Contains(t, files, rendering.PartHeader)
	require.Contains(t, files, rendering.PartFooter)
	assert.Contains(t, files[rendering.PartHeader], "ACME Corp")
	assert.Contains(t, files[rendering.PartFooter], `w:instr=" PAGE "`)
	assert.Contains(t, files[rendering.PartFooter], " of report")
	assert.Contains(t, files[rendering.PartDocument], `w:ascii="Georgia"`)
	assert.Contains(t, files[rendering.PartDocument], `<w:sz w:val="28"/>`)
}

func TestDOCXEncoder_Logo(t *testing.T) {
	bundle := types.CustomizationBundle{Logo: testPNG(t, 40, 20)}
	files := unzip(t, encode(t, types.KindDOCX, "One\nTwo\nThree", bundle).Data)

	assert.Contains(t, files, "word/media/logo.png")
	doc := files[rendering.PartDocument]
	assert.Contains(t, doc, `<wp:extent cx="381000" cy="190500"/>`)
	assert.Equal(t, 5, strings.Count(doc, "<w:p>"))
}

func TestDOCXEncoder_UnreadableLogoIsSkipped(t *testing.T) {
	bundle := types.CustomizationBundle{Logo: &types.Image{Data: []byte("not an image"), MIMEType: "image/png"}}
	files := unzip(t, encode(t, types.KindDOCX, "Body", bundle).Data)

	for name := range files {
		assert.False(t, strings.HasPrefix(name, "word/media/"), "unexpected media part %s", name)
	}
	assert.Equal(t, 1, strings.Count(files[rendering.PartDocument], "<w:p>"))
}

func TestDOCXEncoder_EscapesMarkup(t *testing.T) {
	files := unzip(t, encode(t, types.KindDOCX, `<b>Tom & "Jerry"</b>`, types.CustomizationBundle{}).Data)

	doc := files[rendering.PartDocument]
	assert.Contains(t, doc, "&lt;b&gt;Tom &amp;")
	assert.NotContains(t, doc, "<b>")
}

func pdfPages(data []byte) int {
	return bytes.Count(data, []byte("<</Type /Page\n"))
}

func manyLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("Line %d of the generated report", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestPDFEncoder_SinglePage(t *testing.T) {
	artifact := encode(t, types.KindPDF, "Hello world", types.CustomizationBundle{})

	assert.Equal(t, ContentTypePDF, artifact.ContentType)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte("%PDF-")))
	assert.Equal(t, 1, pdfPages(artifact.Data))
	assert.Contains(t, string(artifact.Data), "(Hello world) Tj")
}

func TestPDFEncoder_PaginatesWithFooterOnEveryPage(t *testing.T) {
	bundle := types.CustomizationBundle{
		HeaderText: "Quarterly report",
		FooterText: "Page Number",
	}
	artifact := encode(t, types.KindPDF, manyLines(200), bundle)

	pages := pdfPages(artifact.Data)
	require.Greater(t, pages, 1)

	out := string(artifact.Data)
	assert.Equal(t, pages, strings.Count(out, "(Quarterly report) Tj"))
	for page := 1; page <= pages; page++ {
		assert.Equal(t, 1, strings.Count(out, fmt.Sprintf("(Page %d) Tj", page)), "footer of page %d", page)
	}
	assert.Contains(t, out, "(Line 200 of the generated report) Tj")
}

func TestPDFEncoder_FontMapping(t *testing.T) {
	tests := []struct {
		family types.FontFamily
		want   string
	}{
		{types.FontTimesNewRoman, "/BaseFont /Times-Roman"},
		{types.FontCourierNew, "/BaseFont /Courier"},
		{types.FontArial, "/BaseFont /Helvetica"},
		{types.FontGeorgia, "/BaseFont /Helvetica"},
	}
	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			artifact := encode(t, types.KindPDF, "Body", types.CustomizationBundle{FontFamily: tt.family})
			assert.Contains(t, string(artifact.Data), tt.want)
		})
	}
}

func TestPDFFontFamily(t *testing.T) {
	assert.Equal(t, "times", PDFFontFamily(types.FontTimesNewRoman))
	assert.Equal(t, "courier", PDFFontFamily("COURIER NEW"))
	assert.Equal(t, "helvetica", PDFFontFamily(types.FontCalibri))
	assert.Equal(t, "helvetica", PDFFontFamily(""))
}

func TestPDFEncoder_Logo(t *testing.T) {
	bundle := types.CustomizationBundle{Logo: testPNG(t, 96, 48)}
	artifact := encode(t, types.KindPDF, "Body", bundle)

	out := string(artifact.Data)
	assert.Contains(t, out, "/Subtype /Image")
	assert.Equal(t, 1, pdfPages(artifact.Data))
}

func TestPDFEncoder_UnreadableLogoIsSkipped(t *testing.T) {
	bundle := types.CustomizationBundle{Logo: &types.Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}}
	artifact := encode(t, types.KindPDF, "Body", bundle)

	assert.NotContains(t, string(artifact.Data), "/Subtype /Image")
	assert.Contains(t, string(artifact.Data), "(Body) Tj")
}

func TestPDFEncoder_NonLatinTextDoesNotFail(t *testing.T) {
	artifact := encode(t, types.KindPDF, "Café résumé\n日本語のテキスト", types.CustomizationBundle{})
	assert.Equal(t, 1, pdfPages(artifact.Data))
}

func TestXLSXEncoder_RoundTrip(t *testing.T) {
	content := "```json\n[{\"Name\":\"X\",\"Qty\":2},{\"Name\":\"Y\",\"Qty\":3.5}]\n```"
	artifact := encode(t, types.KindXLSX, content, types.CustomizationBundle{})

	assert.Equal(t, ContentTypeXLSX, artifact.ContentType)
	assert.Equal(t, "spreadsheet.xlsx", artifact.Filename)

	rows, err := DecodeSpreadsheet(artifact.Data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"X", "2"}, rows[0].Values())
	assert.Equal(t, []string{"Y", "3.5"}, rows[1].Values())

	qty, ok := rows[0].Get("Qty")
	assert.True(t, ok)
	assert.Equal(t, "2", qty)
}

func TestXLSXEncoder_KeepsNumbersFloatCannotHold(t *testing.T) {
	content := `[{"id":12345678901234567890,"v":1e400,"n":2}]`
	rows, err := DecodeSpreadsheet(encode(t, types.KindXLSX, content, types.CustomizationBundle{}).Data)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"12345678901234567890", "1e400", "2"}, rows[0].Values())
}

func TestXLSXEncoder_MissingKeysAreBlank(t *testing.T) {
	content := `[{"a":"1","b":"2"},{"a":"3"}]`
	rows, err := DecodeSpreadsheet(encode(t, types.KindXLSX, content, types.CustomizationBundle{}).Data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"3", ""}, rows[1].Values())
}

func TestXLSXEncoder_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  tabular.Reason
	}{
		{"object", "{}", tabular.ReasonNotArray},
		{"empty array", "[]", tabular.ReasonEmpty},
		{"prose", "Sorry, I cannot help with that.", tabular.ReasonInvalidJSON},
		{"scalars", "[1, 2]", tabular.ReasonNotObjects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := ForKind(types.KindXLSX)
			require.NoError(t, err)

			artifact, err := enc.Encode(context.Background(), tt.content, types.CustomizationBundle{})
			require.Error(t, err)
			assert.Nil(t, artifact)

			var encErr *EncodeError
			require.ErrorAs(t, err, &encErr)
			assert.Equal(t, types.KindXLSX, encErr.Format)
			assert.True(t, strings.HasPrefix(err.Error(), MalformedSpreadsheetMessage))

			var malformed *tabular.MalformedError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.reason, malformed.Reason)
		})
	}
}

func TestDecodeSpreadsheet_NotAWorkbook(t *testing.T) {
	_, err := DecodeSpreadsheet([]byte("plain text"))
	assert.Error(t, err)
}

func TestTextEncoder(t *testing.T) {
	artifact := encode(t, types.KindText, "héllo\nworld", types.CustomizationBundle{HeaderText: "ignored"})
	assert.Equal(t, "héllo\nworld", string(artifact.Data))
	assert.Equal(t, ContentTypeText, artifact.ContentType)
	assert.Equal(t, "document.txt", artifact.Filename)
}

func TestEncoders_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, kind := range types.OutputKinds {
		t.Run(string(kind), func(t *testing.T) {
			enc, err := ForKind(kind)
			require.NoError(t, err)
			artifact, err := enc.Encode(ctx, `[{"a":1}]`, types.CustomizationBundle{})
			assert.Nil(t, artifact)
			assert.True(t, errors.Is(err, context.Canceled))
		})
	}
}

func TestForKind(t *testing.T) {
	for _, kind := range types.OutputKinds {
		enc, err := ForKind(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, enc.Format())
	}

	_, err := ForKind("odt")
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		kind types.OutputKind
		want string
	}{
		{"empty uses default", "", types.KindDOCX, "document.docx"},
		{"spreadsheet default", "  ", types.KindXLSX, "spreadsheet.xlsx"},
		{"adds extension", "report", types.KindPDF, "report.pdf"},
		{"keeps extension", "report.PDF", types.KindPDF, "report.PDF"},
		{"strips directories", "../../etc/passwd", types.KindText, "passwd.txt"},
		{"strips windows directories", `C:\Users\me\notes.txt`, types.KindText, "notes.txt"},
		{"drops unsafe characters", "a<b>:c?.docx", types.KindDOCX, "abc.docx"},
		{"dots only", "..", types.KindDOCX, "document.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in, tt.kind))
		})
	}
}

func TestEncode_NamesArtifact(t *testing.T) {
	artifact, err := Encode(context.Background(), types.KindText, "body", types.CustomizationBundle{}, "notes")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", artifact.Filename)

	_, err = Encode(context.Background(), types.KindXLSX, "not json", types.CustomizationBundle{}, "")
	assert.Error(t, err)
}

func TestEncodeAll(t *testing.T) {
	kinds := []types.OutputKind{types.KindText, types.KindDOCX, types.KindPDF}
	artifacts, err := EncodeAll(context.Background(), "Body text", types.CustomizationBundle{}, kinds, WithClock(fixedNow))
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	assert.Equal(t, "document.txt", artifacts[0].Filename)
	assert.Equal(t, "document.docx", artifacts[1].Filename)
	assert.Equal(t, "document.pdf", artifacts[2].Filename)

	kinds = append(kinds, types.KindXLSX)
	artifacts, err = EncodeAll(context.Background(), "Body text", types.CustomizationBundle{}, kinds)
	assert.Error(t, err)
	assert.Nil(t, artifacts)
}

func TestPrepareLogo_DownscalesWideImages(t *testing.T) {
	logo, err := prepareLogo(testPNG(t, 2000, 100))
	require.NoError(t, err)
	assert.Equal(t, "png", logo.Format)
	assert.Equal(t, maxLogoSourceWidth, logo.Width)
	assert.Equal(t, 90, logo.Height)
}

func TestPrepareLogo_KeepsSmallImages(t *testing.T) {
	src := testPNG(t, 40, 20)
	logo, err := prepareLogo(src)
	require.NoError(t, err)
	assert.Equal(t, src.Data, logo.Data)
	assert.Equal(t, "image/png", logo.contentType())
}

func TestScaleToWidth(t *testing.T) {
	w, h := scaleToWidth(900, 300, 450)
	assert.InDelta(t, 450, w, 0.001)
	assert.InDelta(t, 150, h, 0.001)

	w, h = scaleToWidth(100, 50, 450)
	assert.InDelta(t, 100, w, 0.001)
	assert.InDelta(t, 50, h, 0.001)
}
