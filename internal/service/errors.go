package service

import "errors"

var (
	ErrInvalidExportFormat = errors.New("format must be csv or xlsx")
	ErrWebhookRequest      = errors.New("webhook request failed")
)

// ValidationError carries a client-facing message for a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }
