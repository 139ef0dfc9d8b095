package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-api/internal/service"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func completedEntry(t *testing.T, logs *observer.ObservedLogs) observer.LoggedEntry {
	t.Helper()
	entries := logs.FilterMessage("Request completed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one request log line, got %d", len(entries))
	}
	return entries[0]
}

func TestLoggingMiddlewareRecordsAPIKeyPrefix(t *testing.T) {
	logger, logs := newObservedLogger()
	keys := stubValidator{"abcdefgh-1234": service.KeyOK}

	handler := LoggingMiddleware(logger)(
		APIKeyMiddleware(keys, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(APIKeyHeader, "abcdefgh-1234")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	fields := completedEntry(t, logs).ContextMap()
	if got := fields["api_key_prefix"]; got != "abcdefgh" {
		t.Errorf("api_key_prefix = %v, want abcdefgh", got)
	}
	if got := fields["status"]; got != int64(http.StatusOK) {
		t.Errorf("status = %v, want 200", got)
	}
}

func TestLoggingMiddlewareOmitsRejectedKeys(t *testing.T) {
	logger, logs := newObservedLogger()
	keys := stubValidator{"stale-token": service.KeyExpired}

	handler := LoggingMiddleware(logger)(
		APIKeyMiddleware(keys, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("Handler reached with a rejected key")
		})),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(APIKeyHeader, "stale-token")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entry := completedEntry(t, logs)
	if _, ok := entry.ContextMap()["api_key_prefix"]; ok {
		t.Error("api_key_prefix logged for a rejected key")
	}
	if entry.Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn for a 401", entry.Level)
	}
}

func TestLoggingMiddlewareLevels(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		logger, logs := newObservedLogger()
		handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

		if got := completedEntry(t, logs).Level; got != tt.want {
			t.Errorf("status %d logged at %v, want %v", tt.status, got, tt.want)
		}
	}
}
