package tabular

import "fmt"

// Reason says why content could not be read as a table.
type Reason string

const (
	ReasonInvalidJSON Reason = "invalid_json"
	ReasonNotArray    Reason = "not_array"
	ReasonEmpty       Reason = "empty"
	ReasonNotObjects  Reason = "not_objects"
)

// MalformedError means the model returned content that is not a non-empty JSON array of objects.
// It is a content problem, never a transport problem.
type MalformedError struct {
	Reason  Reason
	Message string
	Cause   error
}

func (e *MalformedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MalformedError) Unwrap() error {
	return e.Cause
}
