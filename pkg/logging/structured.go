package logging

import (
	"context"
	"time"

	"github.com/agrisync/agrisync/pkg/errors"
	"github.com/rs/zerolog"
)

// StructuredLogger wraps a component logger with domain-specific helpers
type StructuredLogger struct {
	logger zerolog.Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(component string) *StructuredLogger {
	return &StructuredLogger{
		logger: GetLogger(component),
	}
}

// NewStructuredLoggerFromContext creates a structured logger carrying the
// trace fields stored in ctx
func NewStructuredLoggerFromContext(ctx context.Context, component string) *StructuredLogger {
	return &StructuredLogger{
		logger: LoggerFromContextWithComponent(ctx, component),
	}
}

// Zerolog exposes the underlying logger
func (l *StructuredLogger) Zerolog() zerolog.Logger {
	return l.logger
}

// WithField adds a field to the logger
func (l *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	return &StructuredLogger{
		logger: l.logger.With().Interface(key, value).Logger(),
	}
}

// WithFields adds multiple fields to the logger
func (l *StructuredLogger) WithFields(fields map[string]interface{}) *StructuredLogger {
	logger := l.logger.With()
	for key, value := range fields {
		logger = logger.Interface(key, value)
	}
	return &StructuredLogger{
		logger: logger.Logger(),
	}
}

// WithError adds an error to the logger, expanding AgrisyncError details
func (l *StructuredLogger) WithError(err error) *StructuredLogger {
	logger := l.logger.With().Err(err)

	if ae, ok := errors.As(err); ok {
		logger = logger.
			Str("error_code", string(ae.Code)).
			Int("http_status", ae.HTTPStatus)

		if ae.TraceID != "" {
			logger = logger.Str("error_trace_id", ae.TraceID)
		}

		for key, value := range ae.Details {
			logger = logger.Interface("error_"+key, value)
		}
	}

	return &StructuredLogger{
		logger: logger.Logger(),
	}
}

// Debug logs a debug message
func (l *StructuredLogger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Debugf logs a formatted debug message
func (l *StructuredLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// Info logs an info message
func (l *StructuredLogger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Infof logs a formatted info message
func (l *StructuredLogger) Infof(format string, args ...interface{}) {
	l.logger.Info().Msgf(format, args...)
}

// Warn logs a warning message
func (l *StructuredLogger) Warn(msg string) {
	l.logger.Warn().Msg(msg)
}

// Error logs an error message
func (l *StructuredLogger) Error(msg string) {
	l.logger.Error().Msg(msg)
}

// Errorf logs a formatted error message
func (l *StructuredLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// LogOperation logs the start and end of an operation
func (l *StructuredLogger) LogOperation(operation string, fn func() error) error {
	start := time.Now()
	l.logger.Debug().Str("operation", operation).Msg("operation started")

	err := fn()

	logger := l.logger.With().
		Str("operation", operation).
		Dur("duration", time.Since(start)).
		Logger()

	if err != nil {
		logger.Err(err).Msg("operation failed")
	} else {
		logger.Info().Msg("operation completed")
	}

	return err
}

// LogHTTPRequest logs a completed HTTP request
func (l *StructuredLogger) LogHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	event := l.logger.Info()
	if statusCode >= 500 {
		event = l.logger.Error()
	} else if statusCode >= 400 {
		event = l.logger.Warn()
	}

	event.
		Str("method", method).
		Str("path", path).
		Int("status_code", statusCode).
		Dur("duration", duration).
		Msg("http request")
}

// LogEntityOperation logs the outcome of building or validating an entity
func (l *StructuredLogger) LogEntityOperation(operation, entityType, entityID string, success bool, duration time.Duration) {
	event := l.logger.Info()
	if !success {
		event = l.logger.Warn()
	}

	event.
		Str("operation", operation).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Bool("success", success).
		Dur("duration", duration).
		Msg("entity operation")
}

// LogSinkOperation logs a hand-off to an entity sink
func (l *StructuredLogger) LogSinkOperation(sink, entityType, entityID string, err error, duration time.Duration) {
	event := l.logger.Info()
	if err != nil {
		event = l.logger.Error().Err(err)
	}

	event.
		Str("sink", sink).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Bool("success", err == nil).
		Dur("duration", duration).
		Msg("sink operation")
}

// LogPolicyOperation logs a delegation-policy operation
func (l *StructuredLogger) LogPolicyOperation(operation, entityType string, success bool, duration time.Duration) {
	event := l.logger.Info()
	if !success {
		event = l.logger.Error()
	}

	event.
		Str("operation", operation).
		Str("entity_type", entityType).
		Bool("success", success).
		Dur("duration", duration).
		Msg("policy operation")
}
