package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// Middleware stores a request-scoped logger in the request context. When
// requestID is set, the logger carries the request's ID on every record.
func Middleware(logger *Logger, requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := logger
			if requestID != nil {
				if id := requestID(r); id != "" {
					l = l.With(FieldRequestID, id)
				}
			}
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), l)))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = New(DefaultConfig())
	}
	return &StructuredLogger{logger: logger}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithRequestID(requestID).
		WithClientIP(clientIP)

	sl.logger.InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request. 4xx responses are
// logged at warn level and 5xx at error level.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, requestID string, statusCode int, duration time.Duration, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, duration.Milliseconds(), statusCode < 400).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	fields[FieldDurationHuman] = duration.String()

	sl.logger.Logger.Log(ctx, level, "HTTP request completed",
		append([]any{FieldComponent, sl.logger.component}, fields.ToSlice()...)...)
}

// LogEngineRun records one scoring engine evaluation.
func (sl *StructuredLogger) LogEngineRun(ctx context.Context, engine string, score int, duration time.Duration) {
	fields := NewFields().
		WithEngine(engine, score).
		WithOperation(OpAnalyze)
	fields[FieldDurationHuman] = duration.String()

	sl.logger.InfoContext(ctx, "Engine evaluated", fields.ToSlice()...)
}

// LogUpload records a stored KYC upload with a human readable size.
func (sl *StructuredLogger) LogUpload(ctx context.Context, id int64, filename, status string, size int64) {
	fields := NewFields().
		WithDocument(id, filename, status).
		WithOperation(OpCreate)
	fields["size"] = humanize.Bytes(uint64(max(size, 0)))

	sl.logger.InfoContext(ctx, "KYC document uploaded", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
