package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, rec)
	}
	return out
}

func TestComponentLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP).WithComponent(ComponentChat)

	logger.Info("hello", FieldSessionID, "abc")

	line := buf.String()
	if n := strings.Count(line, `"component"`); n != 1 {
		t.Fatalf("component appears %d times: %s", n, line)
	}
	rec := records(t, &buf)[0]
	if rec[FieldComponent] != ComponentChat || rec[FieldSessionID] != "abc" {
		t.Errorf("record = %v", rec)
	}
}

func TestNewDefaultsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewJSONHandler(&buf, nil)})
	if logger.Component() != ComponentApp {
		t.Errorf("Component() = %q, want %q", logger.Component(), ComponentApp)
	}
}

func TestMiddlewareAddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := newBufferLogger(&buf, ComponentHTTP)

	handler := Middleware(base, func(*http.Request) string { return "req_123" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	rec := records(t, &buf)[0]
	if rec[FieldRequestID] != "req_123" || rec[FieldComponent] != ComponentHTTP {
		t.Errorf("record = %v", rec)
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("FromContext() = %+v", logger)
	}
}

func TestLogHTTPEndLevel(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newBufferLogger(&buf, ComponentTrace))
		r := httptest.NewRequest(http.MethodPost, "/api/chat", nil)

		sl.LogHTTPEnd(context.Background(), r, "req_1", tt.status, 1500*time.Microsecond, "10.0.0.1")

		rec := records(t, &buf)[0]
		if rec["level"] != tt.want {
			t.Errorf("status %d logged at %v, want %s", tt.status, rec["level"], tt.want)
		}
		if rec[FieldDurationHuman] != "1.5ms" || rec[FieldStatusCode] != float64(tt.status) {
			t.Errorf("record = %v", rec)
		}
	}
}

func TestLogUploadAndError(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentOnboarding))

	sl.LogUpload(context.Background(), 7, "id.pdf", "Approved", 2048)
	sl.LogError(context.Background(), "boom", errors.New("disk full"), OpCreate, nil)

	recs := records(t, &buf)
	if recs[0]["size"] != "2.0 kB" || recs[0][FieldDocumentID] != 7.0 {
		t.Errorf("upload record = %v", recs[0])
	}
	if recs[1][FieldError] != "disk full" || recs[1][FieldOperation] != OpCreate || recs[1]["level"] != "ERROR" {
		t.Errorf("error record = %v", recs[1])
	}
}
