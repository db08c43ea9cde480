package tabular

import "errors"

// Banners shown above raw content when a table cannot be displayed.
const (
	FallbackBanner = "Could not display table preview. Showing raw content:"
	NoDataBanner   = "No data to display. The generated content might be empty or in an incorrect format."
)

// Fallback is the degraded preview: the raw text under an explanatory banner.
type Fallback struct {
	Banner string
	Raw    string
	Err    error
}

// PreviewResult holds exactly one of Table or Fallback.
type PreviewResult struct {
	Table    *Table
	Fallback *Fallback
}

// Preview parses raw for on-screen display. It never fails; unparsable content degrades to a Fallback.
func Preview(raw string) PreviewResult {
	table, err := Parse(raw)
	if err == nil {
		return PreviewResult{Table: table}
	}

	banner := FallbackBanner
	var malformed *MalformedError
	if errors.As(err, &malformed) && (malformed.Reason == ReasonNotArray || malformed.Reason == ReasonEmpty) {
		banner = NoDataBanner
	}
	return PreviewResult{Fallback: &Fallback{Banner: banner, Raw: raw, Err: err}}
}
