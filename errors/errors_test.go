package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("exit status 1")
	err := ExtractionFailure("op", cause, "failed to fetch metadata")

	expected := "failed to fetch metadata: exit status 1"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if err.Unwrap() != cause {
		t.Errorf("expected Unwrap to return the cause")
	}
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		kind     Kind
		expected int
	}{
		{"invalid input", InvalidInput("op", nil, "bad"), KindInvalidInput, http.StatusBadRequest},
		{"not found", NotFound("op", nil, "missing"), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("op", nil, "not ready"), KindConflict, http.StatusConflict},
		{"extraction", ExtractionFailure("op", nil, "x"), KindExtractionFailure, http.StatusBadGateway},
		{"resolution", ResolutionFailure("op", nil, "x"), KindResolutionFailure, http.StatusInternalServerError},
		{"unavailable", TranscriptionUnavailable("op", nil, "x"), KindTranscriptionUnavailable, http.StatusServiceUnavailable},
		{"transcription", TranscriptionFailure("op", "hosted", nil, "x"), KindTranscriptionFailure, http.StatusBadGateway},
		{"summary", SummaryFailure("op", nil, "x"), KindSummaryFailure, http.StatusBadGateway},
		{"internal", Internal("op", nil, "x"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, tt.err.Code)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
		})
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"not found error", NotFound("op", nil, "not found"), true},
		{"wrapped not found", Internal("op", NotFound("inner", nil, "gone"), "lookup failed"), true},
		{"fmt wrapped", fmt.Errorf("ctx: %w", NotFound("op", nil, "gone")), true},
		{"other error", InvalidInput("op", nil, "bad request"), false},
		{"non-custom error", fmt.Errorf("standard error"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(fmt.Errorf("plain")); got != KindInternal {
		t.Errorf("KindOf(plain) = %s, want %s", got, KindInternal)
	}
	err := fmt.Errorf("wrap: %w", TranscriptionFailure("op", "local", nil, "boom"))
	if got := KindOf(err); got != KindTranscriptionFailure {
		t.Errorf("KindOf() = %s, want %s", got, KindTranscriptionFailure)
	}
	var appErr *AppError
	if !As(err, &appErr) || appErr.Backend != "local" {
		t.Errorf("expected backend 'local' to be recoverable via As")
	}
}
