package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Entity errors
	ErrCodeUnknownEntityType   ErrorCode = "UNKNOWN_ENTITY_TYPE"
	ErrCodeEntityNotFound      ErrorCode = "ENTITY_NOT_FOUND"
	ErrCodeMalformedGeometry   ErrorCode = "MALFORMED_GEOMETRY"
	ErrCodeUnsupportedLocation ErrorCode = "UNSUPPORTED_LOCATION_TYPE"

	// Configuration errors
	ErrCodeInvalidConfig     ErrorCode = "INVALID_CONFIG"
	ErrCodeMissingConfig     ErrorCode = "MISSING_CONFIG"
	ErrCodeUnsupportedConfig ErrorCode = "UNSUPPORTED_CONFIG"

	// Delegation policy errors
	ErrCodePolicyEvaluation ErrorCode = "POLICY_EVALUATION"
	ErrCodePolicyValidation ErrorCode = "POLICY_VALIDATION"
	ErrCodePolicyStore      ErrorCode = "POLICY_STORE"

	// Sink errors
	ErrCodeSink         ErrorCode = "SINK_ERROR"
	ErrCodeNotPersisted ErrorCode = "NOT_PERSISTED"

	// Internal errors
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeNotImplemented ErrorCode = "NOT_IMPLEMENTED"
	ErrCodeTimeout        ErrorCode = "TIMEOUT"

	// Validation errors
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired ErrorCode = "MISSING_REQUIRED"
	ErrCodeInvalidFormat   ErrorCode = "INVALID_FORMAT"
)

// AgrisyncError carries a code, an HTTP status and optional details
type AgrisyncError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"http_status"`
	TraceID    string                 `json:"trace_id,omitempty"`
}

func (e *AgrisyncError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AgrisyncError) Unwrap() error {
	return e.Cause
}

// WithDetails adds additional context to the error
func (e *AgrisyncError) WithDetails(key string, value interface{}) *AgrisyncError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithTraceID attaches the request trace ID
func (e *AgrisyncError) WithTraceID(traceID string) *AgrisyncError {
	e.TraceID = traceID
	return e
}

// New creates a new AgrisyncError with the given code and message
func New(code ErrorCode, message string) *AgrisyncError {
	return &AgrisyncError{
		Code:       code,
		Message:    message,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *AgrisyncError {
	return &AgrisyncError{
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getHTTPStatus(code),
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AgrisyncError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func getHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnknownEntityType, ErrCodeEntityNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidConfig, ErrCodeMissingConfig, ErrCodeUnsupportedConfig,
		ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingRequired, ErrCodeInvalidFormat,
		ErrCodeMalformedGeometry, ErrCodeUnsupportedLocation, ErrCodePolicyValidation:
		return http.StatusBadRequest
	case ErrCodeSink, ErrCodeNotPersisted:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// As returns the first AgrisyncError in err's chain
func As(err error) (*AgrisyncError, bool) {
	var ae *AgrisyncError
	if stderrors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsAgrisyncError reports whether err's chain contains an AgrisyncError
func IsAgrisyncError(err error) bool {
	_, ok := As(err)
	return ok
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ErrCodeInternal
}

// GetHTTPStatus extracts the HTTP status from an error
func GetHTTPStatus(err error) int {
	if ae, ok := As(err); ok {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}

// GetTraceID extracts the trace ID from an error
func GetTraceID(err error) string {
	if ae, ok := As(err); ok {
		return ae.TraceID
	}
	return ""
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AgrisyncError {
	return New(ErrCodeValidation, message)
}

// NewMissingRequired creates an error listing missing required fields
func NewMissingRequired(fields []string) *AgrisyncError {
	return New(ErrCodeMissingRequired, "required fields are missing").
		WithDetails("missing", fields)
}

// NewUnknownEntityType creates an error for an unregistered entity kind
func NewUnknownEntityType(kind string) *AgrisyncError {
	return New(ErrCodeUnknownEntityType, fmt.Sprintf("unknown entity type %q", kind))
}

// NewInvalidConfig creates an invalid config error
func NewInvalidConfig(format string, args ...interface{}) *AgrisyncError {
	return New(ErrCodeInvalidConfig, fmt.Sprintf(format, args...))
}

// NewSinkError wraps a failure reported by an entity sink
func NewSinkError(err error, message string) *AgrisyncError {
	return Wrap(err, ErrCodeSink, message)
}

// NewPolicyError wraps a failure of the policy engine
func NewPolicyError(err error, message string) *AgrisyncError {
	return Wrap(err, ErrCodePolicyEvaluation, message)
}

// NewInternalError wraps an unexpected failure
func NewInternalError(err error, message string) *AgrisyncError {
	return Wrap(err, ErrCodeInternal, message)
}
