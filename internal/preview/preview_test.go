package preview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

func TestRenderText(t *testing.T) {
	html, err := RenderText("# Report\n\nFirst paragraph with **bold** text.")
	require.NoError(t, err)
	assert.Contains(t, html, `<h1 id="report">Report</h1>`)
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderText_OmitsRawHTML(t *testing.T) {
	html, err := RenderText("<script>alert(1)</script>\n\nHello")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "Hello")
}

func TestRenderTable(t *testing.T) {
	html, err := RenderTable(`[{"Name":"X","Qty":2},{"Name":"<b>Y</b>","Qty":null}]`)
	require.NoError(t, err)

	assert.Contains(t, html, "<th>Name</th><th>Qty</th>")
	assert.Contains(t, html, "<td>X</td><td>2</td>")
	assert.Contains(t, html, "<td>&lt;b&gt;Y&lt;/b&gt;</td><td></td>")
	assert.Equal(t, 2, strings.Count(html, "<tr><td>"))
	assert.NotContains(t, html, "preview-error")
}

func TestRenderTable_Fallback(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		banner string
	}{
		{"invalid json", "<oops> not json", tabular.FallbackBanner},
		{"object", `{"a":1}`, tabular.NoDataBanner},
		{"empty", `[]`, tabular.NoDataBanner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := RenderTable(tt.raw)
			require.NoError(t, err)
			assert.Contains(t, html, `class="preview-error"`)
			assert.Contains(t, html, tt.banner)
			assert.NotContains(t, html, "<table>")
			assert.NotContains(t, html, "<oops>")
		})
	}
}

func TestRender_DispatchesOnKind(t *testing.T) {
	html, err := Render(types.KindXLSX, `[{"a":"b"}]`)
	require.NoError(t, err)
	assert.Contains(t, html, "<table>")

	html, err = Render(types.KindDOCX, "plain words")
	require.NoError(t, err)
	assert.Contains(t, html, "<p>plain words</p>")
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 0, WordCount("   \n\t"))
	assert.Equal(t, 4, WordCount("Write a  product\nbrief"))
}
