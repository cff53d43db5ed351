package checkout

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidStep is returned by transitions attempted from the wrong
	// step. It signals misuse of the machine; the session is left untouched.
	ErrInvalidStep = errors.New("checkout: invalid step transition")
	// ErrSubmitInFlight guards against duplicate bookings while a submission
	// awaits the booking API.
	ErrSubmitInFlight = errors.New("checkout: submission already in flight")
	// ErrNotSubmitting is returned when resolving a submission that was never
	// started.
	ErrNotSubmitting = errors.New("checkout: no submission in flight")
)

// FieldError ties a validation failure to the input field that caused it so
// a UI can render the message inline.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports why a transition's preconditions do not hold. The
// session stays in its current step when one is returned.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "checkout: validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "checkout: " + strings.Join(parts, "; ")
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
