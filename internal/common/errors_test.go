package common

import (
	"errors"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	err := NewAppError("DB_QUERY", "list invoices", errors.New("connection reset"))
	got := err.Error()
	for _, want := range []string{"DB_QUERY", "list invoices", "connection reset"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}

	bare := NewAppError("CONFLICT", "already terminal", nil)
	if got := bare.Error(); got != "CONFLICT: already terminal" {
		t.Errorf("Error() = %q", got)
	}
}

func TestExtractionErrorTaxonomy(t *testing.T) {
	cause := errors.New("engine crashed")
	tests := []struct {
		name         string
		err          error
		isExtraction bool
		sentinel     error
	}{
		{name: "ingest", err: NewIngestError("bad document", cause), isExtraction: true, sentinel: ErrIngest},
		{name: "ingest without cause", err: NewIngestError("empty document", nil), isExtraction: true, sentinel: ErrIngest},
		{name: "ocr", err: NewOCRError("page 2", cause), isExtraction: true, sentinel: ErrOCR},
		{name: "not found", err: NewAppError("NOT_FOUND", "gone", ErrNotFound), isExtraction: false, sentinel: ErrNotFound},
		{name: "plain", err: cause, isExtraction: false, sentinel: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExtractionError(tt.err); got != tt.isExtraction {
				t.Errorf("IsExtractionError = %v, want %v", got, tt.isExtraction)
			}
			if tt.sentinel != nil && !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, sentinel) = false", tt.err)
			}
		})
	}
}

func TestAppErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("engine crashed")
	err := NewOCRError("page 1", cause)
	if !errors.Is(err, cause) {
		t.Error("original cause lost in wrapping")
	}
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "OCR_ERROR" {
		t.Errorf("errors.As failed or wrong code: %v", err)
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("wrapping nil must stay nil")
	}
	cause := errors.New("boom")
	wrapped := WrapError(cause, "while doing x")
	if !errors.Is(wrapped, cause) {
		t.Error("cause lost")
	}
	if !strings.Contains(wrapped.Error(), "while doing x") {
		t.Errorf("message = %q", wrapped.Error())
	}
}
