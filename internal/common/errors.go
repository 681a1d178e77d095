package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors. Ingest and OCR errors mark an invoice FAILED;
// everything else surfaces to the caller.
var (
	ErrIngest       = errors.New("document ingest failed")
	ErrOCR          = errors.New("text recognition failed")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrInternal     = errors.New("internal error")
)

// NewAppError builds an AppError wrapping the given cause.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIngestError marks a document that could not be decoded.
func NewIngestError(message string, cause error) error {
	return &AppError{Code: "INGEST_ERROR", Message: message, Cause: join(ErrIngest, cause)}
}

// NewOCRError marks a recognition engine failure.
func NewOCRError(message string, cause error) error {
	return &AppError{Code: "OCR_ERROR", Message: message, Cause: join(ErrOCR, cause)}
}

// IsExtractionError reports whether err belongs to the extraction taxonomy,
// i.e. should transition the invoice to FAILED rather than propagate.
func IsExtractionError(err error) bool {
	return errors.Is(err, ErrIngest) || errors.Is(err, ErrOCR)
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func join(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return errors.Join(sentinel, cause)
}
