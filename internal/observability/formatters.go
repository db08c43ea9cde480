// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/docstudio/internal/tabular"
	"github.com/jonathan/docstudio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxColumnWidth caps one table column in the terminal preview
	maxColumnWidth = 16
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// pad right-pads s with spaces to n runes.
func pad(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintResult outputs a summary of a generation result and its customization.
func (p *Printer) PrintResult(result *types.GenerationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Kind:      %s\n", result.Kind))
	sb.WriteString(fmt.Sprintf("Language:  %s\n", result.Language))
	sb.WriteString(fmt.Sprintf("Tone:      %s\n", result.Tone))
	sb.WriteString(fmt.Sprintf("Created:   %s\n", result.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Words:     %d\n", len(strings.Fields(result.Content))))

	if c := customizationSummary(result.Customization); c != "" {
		sb.WriteString("\n")
		sb.WriteString(c)
	}

	p.printBox("GENERATED "+strings.ToUpper(string(result.Kind)), strings.TrimSuffix(sb.String(), "\n"))
}

func customizationSummary(b types.CustomizationBundle) string {
	var sb strings.Builder
	if b.HeaderText != "" {
		sb.WriteString(fmt.Sprintf("Header:    %s\n", b.HeaderText))
	}
	if b.FooterText != "" {
		sb.WriteString(fmt.Sprintf("Footer:    %s\n", b.FooterText))
	}
	if b.HasLogo() {
		sb.WriteString(fmt.Sprintf("Logo:      %s, %d bytes\n", b.Logo.MIMEType, len(b.Logo.Data)))
	}
	if b.FontFamily != "" || b.FontSize > 0 {
		sb.WriteString(fmt.Sprintf("Font:      %s %dpt\n", b.FontFamilyOrDefault(), b.FontSizeOrDefault()))
	}
	return sb.String()
}

// PrintHistory outputs history entries, newest first.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(entries []types.HistoryEntry) {
	if len(entries) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("HISTORY IS EMPTY", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d saved results:\n\n", len(entries)))
	for i, e := range entries {
		firstLine, _, _ := strings.Cut(strings.TrimSpace(e.Result.Content), "\n")
		sb.WriteString(fmt.Sprintf("%s  %-5s %s\n", e.ID[:min(8, len(e.ID))], e.Result.Kind,
			e.Result.CreatedAt.Format("2006-01-02 15:04")))
		sb.WriteString(fmt.Sprintf("    %s\n", truncate(firstLine, 50)))
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("HISTORY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTable outputs a tabular preview, or its fallback banner and raw text.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintTable(preview tabular.PreviewResult) {
	if preview.Table == nil {
		content := ""
		if preview.Fallback != nil {
			content = preview.Fallback.Banner + "\n\n" + preview.Fallback.Raw
		}
		p.printBox("TABLE PREVIEW UNAVAILABLE", content)
		return
	}

	table := preview.Table
	widths := make([]int, len(table.Headers))
	for i, h := range table.Headers {
		widths[i] = min(utf8.RuneCountInString(h), maxColumnWidth)
	}
	for _, row := range table.Rows {
		for i, v := range row.Values() {
			widths[i] = max(widths[i], min(utf8.RuneCountInString(v), maxColumnWidth))
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = pad(truncate(c, max(widths[i], 4)), widths[i])
		}
		fmt.Fprintf(p.out, "│ %s │\n", strings.Join(parts, " │ "))
	}
	rule := func(left, mid, right string) {
		segs := make([]string, len(widths))
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		fmt.Fprintf(p.out, "%s%s%s\n", left, strings.Join(segs, mid), right)
	}

	rule("┌", "┬", "┐")
	writeRow(table.Headers)
	rule("├", "┼", "┤")
	for _, row := range table.Rows {
		writeRow(row.Values())
	}
	rule("└", "┴", "┘")

	if n := len(table.Rows); n > 0 {
		fmt.Fprintf(p.out, "%d rows, %d columns\n", n, len(table.Headers))
	}
}

// PrintContent outputs the first lines of generated text.
func (p *Printer) PrintContent(title, content string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	shown := min(len(lines), maxItemsToShow*2)
	body := strings.Join(lines[:shown], "\n")
	if len(lines) > shown {
		body += fmt.Sprintf("\n... and %d more lines", len(lines)-shown)
	}
	p.printBox(title, body)
}
