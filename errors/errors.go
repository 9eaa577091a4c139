package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can branch without matching strings.
type Kind string

const (
	KindInvalidInput             Kind = "invalid_input"
	KindNotFound                 Kind = "not_found"
	KindConflict                 Kind = "conflict"
	KindExtractionFailure        Kind = "extraction_failure"
	KindResolutionFailure        Kind = "resolution_failure"
	KindTranscriptionUnavailable Kind = "transcription_unavailable"
	KindTranscriptionFailure     Kind = "transcription_failure"
	KindSummaryFailure           Kind = "summary_failure"
	KindInternal                 Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	// Backend names the transcription backend that failed, if any.
	Backend string `json:"backend,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidInput(op string, err error, message string) *AppError {
	return newError(KindInvalidInput, http.StatusBadRequest, op, err, message)
}

func NotFound(op string, err error, message string) *AppError {
	return newError(KindNotFound, http.StatusNotFound, op, err, message)
}

// Conflict reports a request that clashes with the current state of a job.
func Conflict(op string, err error, message string) *AppError {
	return newError(KindConflict, http.StatusConflict, op, err, message)
}

func ExtractionFailure(op string, err error, message string) *AppError {
	return newError(KindExtractionFailure, http.StatusBadGateway, op, err, message)
}

func ResolutionFailure(op string, err error, message string) *AppError {
	return newError(KindResolutionFailure, http.StatusInternalServerError, op, err, message)
}

func TranscriptionUnavailable(op string, err error, message string) *AppError {
	return newError(KindTranscriptionUnavailable, http.StatusServiceUnavailable, op, err, message)
}

func TranscriptionFailure(op, backend string, err error, message string) *AppError {
	e := newError(KindTranscriptionFailure, http.StatusBadGateway, op, err, message)
	e.Backend = backend
	return e
}

func SummaryFailure(op string, err error, message string) *AppError {
	return newError(KindSummaryFailure, http.StatusBadGateway, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return newError(KindInternal, http.StatusInternalServerError, op, err, message)
}

// KindOf returns the kind of the outermost AppError in err's chain,
// or KindInternal when there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	for err != nil {
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Kind == kind {
			return true
		}
		err = appErr.Err
	}
	return false
}

func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// As is re-exported so callers importing this package need not alias the
// standard library one.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
