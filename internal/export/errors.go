package export

import (
	"fmt"

	"github.com/jonathan/docstudio/internal/types"
)

// EncodeError represents a failure to produce an artifact. No artifact is returned alongside it.
type EncodeError struct {
	Format  types.OutputKind
	Message string
	Cause   error
}

func (e *EncodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EncodeError) Unwrap() error {
	return e.Cause
}
