package matcherrors

import "errors"

// Sentinel errors shared by storage, ingest, stats and api to avoid circular imports.
var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrPlayerNotFound = errors.New("player not found")
	ErrStore          = errors.New("store error")
	ErrUnauthorized   = errors.New("authentication required")
)

// ValidationError reports client input that fails a business rule.
// Message is safe to show to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Invalid returns a *ValidationError with the given message.
func Invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err (or anything it wraps) is a *ValidationError,
// and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
