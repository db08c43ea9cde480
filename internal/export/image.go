package export

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/jonathan/docstudio/internal/types"
)

const (
	// maxLogoPixels guards against decompression bombs.
	maxLogoPixels = 40_000_000
	// maxLogoSourceWidth caps the embedded bitmap; wider logos are downscaled before embedding.
	maxLogoSourceWidth = 1800
	// pixelsPerInch converts logo pixels to physical size.
	pixelsPerInch = 96.0
)

// preparedLogo is a logo in a format both document writers can embed.
type preparedLogo struct {
	Data   []byte
	Format string // "png", "jpeg" or "gif"
	Width  int
	Height int
}

func (l *preparedLogo) contentType() string {
	return "image/" + l.Format
}

// prepareLogo decodes and measures a logo. Formats other than PNG, JPEG and GIF are
// re-encoded as PNG, as are logos wider than maxLogoSourceWidth after downscaling.
func prepareLogo(img *types.Image) (*preparedLogo, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, fmt.Errorf("logo is empty")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode logo config: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("logo has no pixels: %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxLogoPixels {
		return nil, fmt.Errorf("logo too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxLogoPixels)
	}

	embeddable := format == "png" || format == "jpeg" || format == "gif"
	if embeddable && cfg.Width <= maxLogoSourceWidth {
		return &preparedLogo{Data: img.Data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}

	bounds := decoded.Bounds()
	var out image.Image = decoded
	if bounds.Dx() > maxLogoSourceWidth {
		ratio := float64(maxLogoSourceWidth) / float64(bounds.Dx())
		newHeight := max(1, int(float64(bounds.Dy())*ratio))
		dst := image.NewRGBA(image.Rect(0, 0, maxLogoSourceWidth, newHeight))
		draw.CatmullRom.Scale(dst, dst.Bounds(), decoded, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &preparedLogo{Data: buf.Bytes(), Format: "png", Width: out.Bounds().Dx(), Height: out.Bounds().Dy()}, nil
}

// flattenToPNG re-encodes a logo as a non-interlaced 8-bit PNG.
func flattenToPNG(logo *preparedLogo) (*preparedLogo, error) {
	decoded, _, err := image.Decode(bytes.NewReader(logo.Data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	bounds := decoded.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), decoded, bounds.Min, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	return &preparedLogo{Data: buf.Bytes(), Format: "png", Width: bounds.Dx(), Height: bounds.Dy()}, nil
}

// scaleToWidth returns the logo size (in the logo's own units) capped at maxWidth, preserving aspect ratio.
func scaleToWidth(width, height, maxWidth float64) (float64, float64) {
	scaledWidth := min(width, maxWidth)
	return scaledWidth, scaledWidth * height / width
}
