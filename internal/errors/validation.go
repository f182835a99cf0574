package errors

import "errors"

// ValidationError is a user-correctable failure raised by the cart, gift and address models.
// It is returned as a value, never panicked, and rendered inline by the storefront.
type ValidationError struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Is matches another ValidationError with the same code, so callers can write
// errors.Is(err, apperrors.NewValidation(apperrors.MissingRecipient, "")).
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func NewValidation(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// NewFieldValidation builds a ValidationError listing the offending fields.
func NewFieldValidation(code, message string, fields map[string]string) *ValidationError {
	return &ValidationError{Code: code, Message: message, Fields: fields}
}

// ValidationCode returns the code of a ValidationError in err's chain, or "".
func ValidationCode(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}
