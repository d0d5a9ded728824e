package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TraceIDKey is the context key for trace ID
type TraceIDKey struct{}

// CorrelationIDKey is the context key for correlation ID
type CorrelationIDKey struct{}

// ConsumerKey is the context key for the gateway consumer name
type ConsumerKey struct{}

// Headers set by the API gateway in front of the broker
const (
	HeaderTraceID       = "X-Trace-ID"
	HeaderCorrelationID = "X-Correlation-ID"
	HeaderConsumer      = "X-Consumer-Username"
)

// GenerateTraceID generates a random trace ID
func GenerateTraceID() string {
	return randomHex(16)
}

// GenerateCorrelationID generates a random correlation ID
func GenerateCorrelationID() string {
	return randomHex(8)
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// WithTraceID adds a trace ID to the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey{}, traceID)
}

// WithCorrelationID adds a correlation ID to the context
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey{}, correlationID)
}

// WithConsumer adds the gateway consumer to the context
func WithConsumer(ctx context.Context, consumer string) context.Context {
	return context.WithValue(ctx, ConsumerKey{}, consumer)
}

// GetTraceID extracts the trace ID from the context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}

// GetCorrelationID extracts the correlation ID from the context
func GetCorrelationID(ctx context.Context) string {
	if correlationID, ok := ctx.Value(CorrelationIDKey{}).(string); ok {
		return correlationID
	}
	return ""
}

// GetConsumer extracts the gateway consumer from the context
func GetConsumer(ctx context.Context) string {
	if consumer, ok := ctx.Value(ConsumerKey{}).(string); ok {
		return consumer
	}
	return ""
}

// LoggerFromContext returns the global logger enriched with the tracing
// fields found in ctx
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	lc := log.Logger.With()

	if traceID := GetTraceID(ctx); traceID != "" {
		lc = lc.Str("trace_id", traceID)
	}
	if correlationID := GetCorrelationID(ctx); correlationID != "" {
		lc = lc.Str("correlation_id", correlationID)
	}
	if consumer := GetConsumer(ctx); consumer != "" {
		lc = lc.Str("consumer", consumer)
	}
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		lc = lc.Str("request_id", requestID)
	}

	return lc.Logger()
}

// LoggerFromContextWithComponent returns a logger with tracing information and component
func LoggerFromContextWithComponent(ctx context.Context, component string) zerolog.Logger {
	return LoggerFromContext(ctx).With().Str("component", component).Logger()
}

// ExtractTraceInfoFromRequest reads tracing headers, generating IDs that are absent
func ExtractTraceInfoFromRequest(r *http.Request) (traceID, correlationID string) {
	traceID = r.Header.Get(HeaderTraceID)
	if traceID == "" {
		traceID = r.Header.Get(middleware.RequestIDHeader)
	}
	if traceID == "" {
		traceID = GenerateTraceID()
	}

	correlationID = r.Header.Get(HeaderCorrelationID)
	if correlationID == "" {
		correlationID = GenerateCorrelationID()
	}

	return traceID, correlationID
}

// ContextFromRequest creates a context with tracing information from an HTTP request
func ContextFromRequest(r *http.Request) context.Context {
	ctx := r.Context()

	traceID, correlationID := ExtractTraceInfoFromRequest(r)
	ctx = WithTraceID(ctx, traceID)
	ctx = WithCorrelationID(ctx, correlationID)

	if consumer := r.Header.Get(HeaderConsumer); consumer != "" {
		ctx = WithConsumer(ctx, consumer)
	}

	return ctx
}

// Middleware attaches tracing IDs to the request context and response
// headers, then logs the request once it completes.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := ContextFromRequest(r)

		w.Header().Set(HeaderTraceID, GetTraceID(ctx))
		w.Header().Set(HeaderCorrelationID, GetCorrelationID(ctx))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		NewStructuredLoggerFromContext(ctx, "http").
			WithField("bytes", ww.BytesWritten()).
			LogHTTPRequest(r.Method, r.URL.Path, status, time.Since(start))
	})
}
