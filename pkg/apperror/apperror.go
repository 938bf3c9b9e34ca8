package apperror

import "errors"

// Kind classifies an error by how the caller should react to it
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindForbidden
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// UnavailableMessage is the only message ever shown to callers for KindUnavailable
const UnavailableMessage = "Service temporarily unavailable, please try again later"

// Error is an error with a kind and a caller-facing message.
// Err holds the underlying cause and is never shown to callers.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Unavailable wraps a persistence or infrastructure failure
func Unavailable(err error) *Error {
	return Wrap(KindUnavailable, UnavailableMessage, err)
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// MessageOf returns the caller-facing message for err.
// Unknown and unavailable errors never leak their cause.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnavailable && appErr.Kind != KindUnknown {
		return appErr.Message
	}
	return UnavailableMessage
}

// EnsureKind returns err unchanged if it already carries a kind,
// otherwise it is wrapped as unavailable.
func EnsureKind(err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != KindUnknown {
		return err
	}
	return Unavailable(err)
}
