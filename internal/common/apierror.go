package common

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrServer     = errors.New("server error")
	ErrNetwork    = errors.New("network error")
	ErrUnknown    = errors.New("unknown error")
)

// Messages surfaced to callers for each error kind.
const (
	MessageNetwork    = "Network error. Please check your connection."
	MessageServer     = "Server error occurred."
	MessageValidation = "Validation error."
	MessageDefault    = "An unexpected error occurred."
)

// APIError is the single shape every resource API failure is normalized into.
type APIError struct {
	Kind    error  `json:"-"`
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	URL     string `json:"-"`

	cause error
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is works against ErrNetwork as well as context.DeadlineExceeded.
func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func validationError(url string, cause error) *APIError {
	return &APIError{Kind: ErrValidation, Message: MessageValidation, URL: url, cause: cause}
}

func serverError(url string, status int, message string) *APIError {
	if message == "" {
		message = MessageServer
	}
	return &APIError{Kind: ErrServer, Message: message, Status: status, URL: url}
}

func networkError(url string, cause error) *APIError {
	return &APIError{Kind: ErrNetwork, Message: MessageNetwork, URL: url, cause: cause}
}

func unknownError(url string, cause error) *APIError {
	message := MessageDefault
	if cause != nil && cause.Error() != "" {
		message = cause.Error()
	}
	return &APIError{Kind: ErrUnknown, Message: message, URL: url, cause: cause}
}

// IsRetryable reports whether err is worth another attempt. Validation
// errors come from a malformed response and repeat deterministically.
func IsRetryable(err error) bool {
	return !errors.Is(err, ErrValidation)
}
