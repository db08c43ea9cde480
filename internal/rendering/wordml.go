package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

// Part names inside a .docx package
const (
	PartContentTypes = "[Content_Types].xml"
	PartPackageRels  = "_rels/.rels"
	PartCore         = "docProps/core.xml"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartHeader       = "word/header1.xml"
	PartFooter       = "word/footer1.xml"
)

// PageNumberPlaceholder in footer text becomes a PAGE field, so every page shows its own number.
const PageNumberPlaceholder = "Page Number"

// RunStyle is the character formatting applied to every run.
type RunStyle struct {
	Font       string
	HalfPoints int
}

// Logo describes an embedded image. The image bytes live in the media part word/media/logo.<Extension>.
type Logo struct {
	Extension   string
	ContentType string
	WidthEMU    int64
	HeightEMU   int64
}

// MediaPart returns the package part name holding the logo bytes.
func (l *Logo) MediaPart() string {
	return "word/media/logo." + l.Extension
}

// Document is everything needed to render the XML parts of a single-section document.
type Document struct {
	Title      string
	Created    time.Time
	Style      RunStyle
	Paragraphs []string
	Header     string
	Footer     string
	Logo       *Logo
}

// Part is one rendered package part.
type Part struct {
	Name string
	Data []byte
}

var partTemplates = []struct {
	part     string
	template string
	include  func(Document) bool
}{
	{PartContentTypes, "content_types.xml.tmpl", nil},
	{PartPackageRels, "package_rels.xml.tmpl", nil},
	{PartCore, "core.xml.tmpl", nil},
	{PartDocument, "document.xml.tmpl", nil},
	{PartDocumentRels, "document_rels.xml.tmpl", nil},
	{PartStyles, "styles.xml.tmpl", nil},
	{PartHeader, "header.xml.tmpl", func(d Document) bool { return d.Header != "" }},
	{PartFooter, "footer.xml.tmpl", func(d Document) bool { return d.Footer != "" }},
}

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	return template.New("wordml").Funcs(template.FuncMap{
		"xml":        EscapeXML,
		"rpr":        runProperties,
		"run":        textRun,
		"footerRuns": footerRuns,
	}).ParseFS(templateFiles, "templates/*.tmpl")
})

// Render renders the XML parts of doc in package order. Media parts are not included.
func Render(doc Document) ([]Part, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, &TemplateError{Part: "(all)", Message: "failed to parse templates", Cause: err}
	}

	view := documentView{Document: doc, Created: doc.Created.UTC().Format("2006-01-02T15:04:05Z")}

	parts := make([]Part, 0, len(partTemplates))
	for _, pt := range partTemplates {
		if pt.include != nil && !pt.include(doc) {
			continue
		}
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, pt.template, view); err != nil {
			return nil, &TemplateError{Part: pt.part, Message: "failed to execute template", Cause: err}
		}
		parts = append(parts, Part{Name: pt.part, Data: buf.Bytes()})
	}
	return parts, nil
}

type documentView struct {
	Document
	Created string
}

func runProperties(style RunStyle) string {
	font := EscapeXML(style.Font)
	return fmt.Sprintf(`<w:rFonts w:ascii="%s" w:hAnsi="%s" w:eastAsia="%s" w:cs="%s"/><w:sz w:val="%d"/><w:szCs w:val="%d"/>`,
		font, font, font, font, style.HalfPoints, style.HalfPoints)
}

func textRun(text string, style RunStyle) string {
	return `<w:r><w:rPr>` + runProperties(style) + `</w:rPr><w:t xml:space="preserve">` + EscapeXML(text) + `</w:t></w:r>`
}

// footerRuns renders footer text, turning the first page-number placeholder into a PAGE field.
func footerRuns(text string, style RunStyle) string {
	before, after, found := strings.Cut(text, PageNumberPlaceholder)
	if !found {
		return textRun(text, style)
	}

	var sb strings.Builder
	if before != "" {
		sb.WriteString(textRun(before, style))
	}
	sb.WriteString(`<w:fldSimple w:instr=" PAGE ">`)
	sb.WriteString(textRun("1", style))
	sb.WriteString(`</w:fldSimple>`)
	if after != "" {
		sb.WriteString(textRun(after, style))
	}
	return sb.String()
}
