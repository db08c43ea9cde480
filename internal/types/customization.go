package types

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Image is an embedded raster image together with its original encoding.
type Image struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"-"`
}

// ParseDataURL decodes a "data:image/png;base64,..." URL as produced by a browser FileReader.
func ParseDataURL(dataURL string) (*Image, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data URL has no payload")
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("data URL is not an image: %s", mimeType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data URL: %w", err)
	}
	return &Image{Data: data, MIMEType: mimeType}, nil
}

// DataURL encodes the image back into data URL form.
func (img *Image) DataURL() string {
	if img == nil || len(img.Data) == 0 {
		return ""
	}
	return "data:" + img.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// MarshalText stores the image as a data URL so history snapshots stay self-contained.
func (img Image) MarshalText() ([]byte, error) {
	return []byte(img.DataURL()), nil
}

// UnmarshalText parses a data URL. Empty text yields an empty image.
func (img *Image) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*img = Image{}
		return nil
	}
	parsed, err := ParseDataURL(string(text))
	if err != nil {
		return err
	}
	*img = *parsed
	return nil
}

// CustomizationBundle carries optional header, footer, logo and font settings.
// Absent fields always mean "use the default", never an error.
type CustomizationBundle struct {
	HeaderText string     `json:"header_text,omitempty"`
	FooterText string     `json:"footer_text,omitempty"`
	Logo       *Image     `json:"logo,omitempty"`
	FontFamily FontFamily `json:"font_family,omitempty"`
	FontSize   FontSize   `json:"font_size,omitempty"`
}

// FontFamilyOrDefault returns the configured family or DefaultFontFamily.
func (b CustomizationBundle) FontFamilyOrDefault() FontFamily {
	if b.FontFamily == "" {
		return DefaultFontFamily
	}
	return b.FontFamily
}

// FontSizeOrDefault returns the configured size or DefaultFontSize.
func (b CustomizationBundle) FontSizeOrDefault() FontSize {
	if b.FontSize <= 0 {
		return DefaultFontSize
	}
	return b.FontSize
}

// HasLogo reports whether a non-empty logo is attached.
func (b CustomizationBundle) HasLogo() bool {
	return b.Logo != nil && len(b.Logo.Data) > 0
}
