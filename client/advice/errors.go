package advice

import "fmt"

// Reason identifies why a request was rejected before any network call.
type Reason string

const (
	ReasonSpeakFirst     Reason = "speak_first"
	ReasonSelectLocation Reason = "select_location"
)

// RejectionError is a failed precondition. Message is localized for display.
type RejectionError struct {
	Reason  Reason
	Message string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("advice request rejected (%s): %s", e.Reason, e.Message)
}

// GenerationError is a hard failure of the generation call itself.
type GenerationError struct {
	Detail  string
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	return e.Message
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
