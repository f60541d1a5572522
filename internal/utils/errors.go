package utils

import "errors"

// Error kinds shared by services and handlers. Match them with errors.Is.
var (
	ErrValidation  = errors.New("VALIDATION_ERROR")
	ErrPersistence = errors.New("PERSISTENCE_ERROR")
	ErrNotFound    = errors.New("NOT_FOUND")
)

// AppError carries a failure kind, a message safe to show to callers and the
// underlying cause, if any.
type AppError struct {
	Kind    error
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// Is reports whether target is the error's kind.
func (e *AppError) Is(target error) bool { return target == e.Kind }

// ValidationError reports malformed or missing input.
func ValidationError(message string) error {
	return &AppError{Kind: ErrValidation, Message: message}
}

// NotFoundError reports a lookup by id that found nothing.
func NotFoundError(message string) error {
	return &AppError{Kind: ErrNotFound, Message: message}
}

// PersistenceError wraps a store failure.
func PersistenceError(message string, err error) error {
	return &AppError{Kind: ErrPersistence, Message: message, Err: err}
}

// Message returns the caller-facing message of err, or its text when err is
// not an *AppError.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
