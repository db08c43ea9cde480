// Package preview renders generated content as HTML for on-screen display.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

// md renders model output. Raw HTML in the output is omitted, not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

var tableTemplate = template.Must(template.New("table").Parse(
	`{{if .Table}}<div class="table-preview"><table>
<thead><tr>{{range .Table.Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Table.Rows}}<tr>{{range .}}<td>{{.Value}}</td>{{end}}</tr>
{{end}}</tbody>
</table></div>{{else}}<div class="preview-error">
<p>{{.Fallback.Banner}}</p>
<pre>{{.Fallback.Raw}}</pre>
</div>{{end}}
`))

// RenderText converts Markdown-ish model output into HTML.
func RenderText(content string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("failed to render preview: %w", err)
	}
	return buf.String(), nil
}

// RenderTable renders tabular content as an HTML table. Content that is not a non-empty
// array of row objects renders as the error-styled fallback with the raw text escaped.
func RenderTable(raw string) (string, error) {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, tabular.Preview(raw)); err != nil {
		return "", fmt.Errorf("failed to render table preview: %w", err)
	}
	return buf.String(), nil
}

// Render picks the renderer for kind.
func Render(kind types.OutputKind, content string) (string, error) {
	if kind.IsTabular() {
		return RenderTable(content)
	}
	return RenderText(content)
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
