// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// CleanJSONBlock extracts the JSON payload from a model response.
// LLMs often wrap JSON in ```json ... ``` blocks, or add a sentence before or after it,
// even when instructed not to. Valid JSON is returned untouched. If no balanced JSON value
// is found the unfenced text is returned as is.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if gjson.Valid(text) {
		return text
	}
	text = stripCodeFence(text)

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var extracted string
	if text[start] == '{' {
		extracted = extractJSONObject(text[start:])
	} else {
		extracted = extractJSONArray(text[start:])
	}
	if extracted == "" {
		return text
	}
	return extracted
}

// stripCodeFence returns the body of a fenced block that spans the whole of text.
// Fences elsewhere are left alone; they may sit inside JSON strings.
func stripCodeFence(text string) string {
	if len(text) < 6 || !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	body := text[3 : len(text)-3]

	// Skip the language identifier on the opening fence line
	if idx := strings.Index(body, "\n"); idx >= 0 {
		firstLine := body[:idx]
		if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.ContainsAny(firstLine, "{[") {
			body = body[idx+1:]
		}
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	return strings.TrimSpace(body)
}

// extractJSONObject returns the balanced {...} value at the start of text, or "".
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced [...] value at the start of text, or "".
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, closing byte) string {
	if text == "" || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
