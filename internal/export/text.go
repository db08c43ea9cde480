package export

import (
	"context"

	"github.com/jonathan/docstudio/internal/types"
)

// TextEncoder writes content as a UTF-8 text file. Customization does not apply.
type TextEncoder struct{}

func (e *TextEncoder) Format() types.OutputKind {
	return types.KindText
}

func (e *TextEncoder) Encode(ctx context.Context, content string, _ types.CustomizationBundle) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, &EncodeError{Format: types.KindText, Message: "export cancelled", Cause: err}
	}
	return &Artifact{
		Filename:    DefaultFilename(types.KindText),
		ContentType: ContentTypeText,
		Data:        []byte(content),
	}, nil
}
