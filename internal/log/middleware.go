package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ctxKey struct{}

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or one wrapping the slog default.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

// Middleware puts logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

// ComponentMiddleware renames the component of the request logger.
func ComponentMiddleware(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := FromContext(r.Context()).WithComponent(component)
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}

// RequestIDMiddleware stamps the request logger with the request id.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), l)))
		})
	}
}

// HTTPStart logs an incoming request at debug level.
func HTTPStart(ctx context.Context, r *http.Request, requestID, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	FromContext(ctx).DebugContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// HTTPEnd logs a finished request: warn for 4xx, error for 5xx.
func HTTPEnd(ctx context.Context, r *http.Request, requestID, clientIP string, status int, durationMs int64) {
	level := slog.LevelInfo
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(status, durationMs, status < 400).
		WithRequestID(requestID).
		WithClientIP(clientIP)
	l := FromContext(ctx)
	l.Logger.Log(ctx, level, "HTTP request completed", l.args(fields.ToSlice())...)
}

// TransactionWritten logs a stored ledger movement.
func TransactionWritten(ctx context.Context, op, id, accountID, invoiceMonth string, amountCents int64, direction string) {
	fields := NewFields().
		WithEntity("transaction", id).
		WithMovement(accountID, invoiceMonth, amountCents, direction).
		WithOperation(op)
	FromContext(ctx).WithComponent(ComponentLedger).InfoContext(ctx, "Transaction written", fields.ToSlice()...)
}

// Failure logs err with its operation and error category.
func Failure(ctx context.Context, msg string, err error, operation, errType string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields = fields.WithError(err).WithOperation(operation)
	fields["error_type"] = errType
	FromContext(ctx).ErrorContext(ctx, msg, fields.ToSlice()...)
}
