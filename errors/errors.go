package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorRecoverable represents anomalies dispatch can log and continue past
	ErrorRecoverable ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input or configuration
	ErrorInvalid
	// ErrorFatal represents caller bugs that should surface immediately
	ErrorFatal
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorRecoverable:
		return "recoverable"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Argument errors: caller bugs surfaced immediately
	ErrNilHandler  = errors.New("handler cannot be nil")
	ErrNilBus      = errors.New("bus cannot be nil")
	ErrNilToken    = errors.New("registration token cannot be nil")
	ErrNilFunction = errors.New("function cannot be nil")

	// Identity errors
	ErrInvalidIdentity = errors.New("invalid routing identity")

	// Message shape errors
	ErrUnsupportedShape = errors.New("message carries no capability tag")
	ErrAmbiguousShape   = errors.New("message carries more than one capability tag")
	ErrKindMismatch     = errors.New("message kind does not match registration kind")

	// Registration errors
	ErrDuplicateRegistration = errors.New("registration already exists for owner, type, and routing key")
	ErrRegistrationNotFound  = errors.New("registration not found")

	// Lifecycle errors
	ErrTornDown = errors.New("handler table already torn down")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrMissingConfig = errors.New("missing required configuration")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsRecoverable checks if an error is an anomaly dispatch may continue past
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorRecoverable
	}

	return errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrRegistrationNotFound)
}

// IsFatal checks if an error is a caller bug that should surface immediately
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	return errors.Is(err, ErrNilHandler) ||
		errors.Is(err, ErrNilBus) ||
		errors.Is(err, ErrNilToken) ||
		errors.Is(err, ErrNilFunction)
}

// IsInvalid checks if an error is due to invalid input
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrUnsupportedShape) ||
		errors.Is(err, ErrAmbiguousShape) ||
		errors.Is(err, ErrKindMismatch) ||
		errors.Is(err, ErrInvalidIdentity) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorRecoverable // Default for nil
	}

	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}
	return ErrorRecoverable
}

// newClassified creates a new classified error
// This is an internal helper - use WrapRecoverable(), WrapFatal(), or WrapInvalid() instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapRecoverable wraps an error as a recoverable anomaly with context
func WrapRecoverable(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorRecoverable, wrappedErr, component, method, wrappedErr.Error())
}

// WrapFatal wraps an error as fatal with context
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrappedErr, component, method, wrappedErr.Error())
}

// WrapInvalid wraps an error as invalid with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}
