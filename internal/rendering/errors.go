// Package rendering renders the WordprocessingML parts of a .docx package from embedded templates.
package rendering

import "fmt"

// TemplateError represents an error parsing or executing a part template
type TemplateError struct {
	Part    string
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error in %s: %s: %v", e.Part, e.Message, e.Cause)
	}
	return fmt.Sprintf("template error in %s: %s", e.Part, e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}
