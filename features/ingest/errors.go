package ingest

import (
	"fmt"
	"net/http"
)

// Error codes form the stable contract with API clients and queue
// consumers. Adding a code is fine; renaming one is a breaking change.
const (
	CodeInvalidURL           = "INVALID_URL"
	CodeInvalidConfiguration = "INVALID_CONFIGURATION"
	CodeTranscriptsDisabled  = "TRANSCRIPTS_DISABLED"
	CodeNoTranscriptFound    = "NO_TRANSCRIPT_FOUND"
	CodeVideoUnavailable     = "VIDEO_UNAVAILABLE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeLLMExtractionError   = "LLM_EXTRACTION_ERROR"
	CodeLLMValidationError   = "LLM_VALIDATION_ERROR"
	CodeStagingWriteError    = "STAGING_WRITE_ERROR"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Error carries a stable code alongside the human-readable message. The
// wrapped cause is kept for logs, never serialized to clients.
type Error struct {
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// HTTPStatus maps an error code to its response status.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidURL, CodeInvalidConfiguration:
		return http.StatusBadRequest
	case CodeTranscriptsDisabled, CodeNoTranscriptFound, CodeVideoUnavailable:
		return http.StatusNotFound
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeLLMExtractionError, CodeLLMValidationError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
