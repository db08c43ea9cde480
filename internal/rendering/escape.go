package rendering

import "strings"

// EscapeXML escapes text for use in XML character data and attribute values.
// Characters that XML 1.0 does not allow at all (most C0 controls) are dropped.
func EscapeXML(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text) + len(text)/8)

	for _, r := range text {
		switch r {
		case '&':
			result.WriteString("&amp;")
		case '<':
			result.WriteString("&lt;")
		case '>':
			result.WriteString("&gt;")
		case '"':
			result.WriteString("&quot;")
		case '\'':
			result.WriteString("&apos;")
		case '\t', '\n', '\r':
			result.WriteRune(r)
		case '\uFFFE', '\uFFFF':
		default:
			if r < 0x20 {
				continue
			}
			result.WriteRune(r)
		}
	}

	return result.String()
}
