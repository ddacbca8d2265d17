package logging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func fieldMap(entry observer.LoggedEntry) map[string]zap.Field {
	fields := map[string]zap.Field{}
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestAccessLoggerUsesRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	access := AccessLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/invoke/greet", nil)
	req = req.WithContext(WithLogger(req.Context(), zap.New(core)))
	access.ServeHTTP(httptest.NewRecorder(), req)

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "request completed" {
		t.Fatalf("unexpected log message: %s", entries[0].Message)
	}
	fields := fieldMap(entries[0])
	if f, ok := fields["status"]; !ok || f.Integer != http.StatusTeapot {
		t.Fatalf("expected status 418, got %+v", f)
	}
	if f, ok := fields["method"]; !ok || f.String != http.MethodPost {
		t.Fatalf("expected method POST, got %+v", f)
	}
	if _, ok := fields["duration"]; !ok {
		t.Fatalf("expected duration field, got %+v", fields)
	}
}

func TestRequestLoggerUsesTraceparent(t *testing.T) {
	var traceID string
	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("traceparent", "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-01")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if traceID != "3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("expected trace ID from traceparent, got %q", traceID)
	}
}

func TestRequestLoggerFallsBackToRequestID(t *testing.T) {
	var traceID string
	inner := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = TraceIDFromContext(r.Context())
	}))
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, "test-request-id")
		inner.ServeHTTP(w, r.WithContext(ctx))
	})

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if traceID != "test-request-id" {
		t.Fatalf("expected request ID as trace ID, got %q", traceID)
	}
}

func TestLoggerWithTraceFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	logger := loggerWithTrace(zap.New(core), "00-3d23d071b5bfd6579171efce907685cb-08f067aa0ba902b7-00", "req-123")
	logger.Info("hello")

	fields := fieldMap(recorded.All()[0])
	if f := fields["trace_id"]; f.String != "3d23d071b5bfd6579171efce907685cb" {
		t.Fatalf("unexpected trace_id: %+v", f)
	}
	if f := fields["span_id"]; f.String != "08f067aa0ba902b7" {
		t.Fatalf("unexpected span_id: %+v", f)
	}
	if f := fields["trace_sampled"]; f.Type != zapcore.BoolType || f.Integer != 0 {
		t.Fatalf("expected unsampled trace, got %+v", f)
	}
	if f := fields["requestId"]; f.String != "req-123" {
		t.Fatalf("unexpected requestId: %+v", f)
	}
}

func TestLoggerWithTraceIgnoresInvalidHeader(t *testing.T) {
	base := zap.NewNop()
	if got := loggerWithTrace(base, "invalid", ""); got != base {
		t.Fatal("expected base logger when no fields apply")
	}
	if got := loggerWithTrace(nil, "", ""); got == nil {
		t.Fatal("expected nop logger for nil base")
	}
}

func TestLogErrorAppendsErrorField(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	LogError(ctx, "failed", errors.New("boom"), zap.String("foo", "bar"))

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := fieldMap(entries[0])
	if f, ok := fields["foo"]; !ok || f.String != "bar" {
		t.Fatalf("expected foo field, got %+v", fields)
	}
	if f, ok := fields["error"]; !ok || f.Type != zapcore.ErrorType {
		t.Fatalf("expected error field, got %+v", fields)
	}
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	if LoggerFromContext(nil) != Logger() {
		t.Fatal("expected global logger for nil context")
	}
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected global logger for empty context")
	}
	if TraceIDFromContext(context.Background()) != "" {
		t.Fatal("expected empty trace ID")
	}
}

func TestLogCommandFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), zap.New(core))

	LogCommand(ctx, "greet", "success", 5*time.Millisecond)

	entries := recorded.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Message != "command invoked" {
		t.Fatalf("unexpected message: %s", entries[0].Message)
	}
	fields := fieldMap(entries[0])
	if f := fields["command.name"]; f.String != "greet" {
		t.Fatalf("unexpected command.name: %+v", f)
	}
	if f := fields["command.result"]; f.String != "success" {
		t.Fatalf("unexpected command.result: %+v", f)
	}
}

func TestPluginInstallsRequestAndAccessLogging(t *testing.T) {
	p := NewPlugin()
	if p.Name() != PluginName {
		t.Fatalf("expected plugin name %q, got %q", PluginName, p.Name())
	}
	if got := len(p.Middleware()); got != 2 {
		t.Fatalf("expected 2 middleware, got %d", got)
	}
}
