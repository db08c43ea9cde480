package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeXML_EmptyString(t *testing.T) {
	assert.Equal(t, "", EscapeXML(""))
}

func TestEscapeXML_NoSpecialCharacters(t *testing.T) {
	text := "This is normal text with no special characters"
	assert.Equal(t, text, EscapeXML(text))
}

func TestEscapeXML_Markup(t *testing.T) {
	assert.Equal(t, "A &amp; B &lt;tag&gt;", EscapeXML("A & B <tag>"))
}

func TestEscapeXML_Quotes(t *testing.T) {
	assert.Equal(t, "&quot;hi&quot; it&apos;s", EscapeXML(`"hi" it's`))
}

func TestEscapeXML_DropsInvalidControlCharacters(t *testing.T) {
	assert.Equal(t, "ab\tc", EscapeXML("a\x00b\x1b\tc"))
}

func TestEscapeXML_Unicode(t *testing.T) {
	text := "Grüße, 日本語, emoji 🚀"
	assert.Equal(t, text, EscapeXML(text))
}
