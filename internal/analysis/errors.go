package analysis

import (
	"context"
	"errors"
	"net"
	"strings"

	"skillgap-backend/internal/extract"
	"skillgap-backend/internal/llm"
)

var (
	ErrNotFound          = errors.New("analysis request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAlreadyTerminal   = errors.New("analysis request already terminal")
	ErrLLMNotConfigured  = errors.New("llm client not configured")
)

// Stable error codes persisted on failed requests and returned to callers.
const (
	ErrorCodeUnsupportedFormat      = "unsupported_format"
	ErrorCodeEmptyDocument          = "empty_document"
	ErrorCodeDocumentFetch          = "document_fetch_error"
	ErrorCodeRateLimited            = "rate_limited"
	ErrorCodeServiceUnavailable     = "service_unavailable"
	ErrorCodeUnauthorized           = "unauthorized"
	ErrorCodeServiceMisconfigured   = "service_misconfigured"
	ErrorCodeMalformedModelResponse = "malformed_model_response"
	ErrorCodePersistence            = "persistence_error"
	ErrorCodeValidation             = "validation_error"
	ErrorCodeInternal               = "internal_error"
)

// schemaError marks a model answer that failed validation.
type schemaError struct{ msg string }

func (e *schemaError) Error() string { return e.msg }

func newSchemaError(msg string) error { return &schemaError{msg: msg} }

// classifyError maps a pipeline failure onto a stable error code.
func classifyError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat
	case errors.Is(err, extract.ErrEmptyDocument):
		return ErrorCodeEmptyDocument
	case errors.Is(err, ErrLLMNotConfigured):
		return ErrorCodeServiceMisconfigured
	}

	var fe *fetchError
	if errors.As(err, &fe) {
		return ErrorCodeDocumentFetch
	}

	var se *llm.StatusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == 429:
			return ErrorCodeRateLimited
		case se.StatusCode == 401 || se.StatusCode == 403:
			return ErrorCodeUnauthorized
		case se.StatusCode >= 500:
			return ErrorCodeServiceUnavailable
		default:
			return ErrorCodeMalformedModelResponse
		}
	}

	var sce *schemaError
	if errors.As(err, &sce) {
		return ErrorCodeMalformedModelResponse
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeServiceUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorCodeServiceUnavailable
	}

	return ErrorCodeInternal
}

// sanitizeError trims an error to a short, single-line message safe to
// persist and return to clients. Provider bodies may carry prompt fragments.
func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.IndexAny(msg, "\r\n"); idx >= 0 {
		msg = msg[:idx]
	}
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen]
	}
	return strings.TrimSpace(msg)
}
