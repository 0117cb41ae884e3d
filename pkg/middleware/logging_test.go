package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/list_db", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if logs.Len() != 1 {
		t.Fatalf("expected 1 log entry, got %d", logs.Len())
	}

	entry := logs.All()[0]
	if entry.Message != "HTTP request" {
		t.Errorf("expected message 'HTTP request', got '%s'", entry.Message)
	}
	if entry.ContextMap()["path"] != "/api/list_db" {
		t.Errorf("expected path /api/list_db, got %v", entry.ContextMap()["path"])
	}
}

func TestRequestLogger_NilLogger_PassesThrough(t *testing.T) {
	called := false
	handler := RequestLogger(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("expected handler to be called")
	}
}

func TestRequestLogger_ServerErrorsLoggedAsWarn(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/create_db", nil))

	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
	if entry.ContextMap()["status"] != int64(http.StatusInternalServerError) {
		t.Errorf("expected status 500, got %v", entry.ContextMap()["status"])
	}
}

func TestRequestLogger_IncludesRequestID(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	handler := RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := logs.All()[0].ContextMap()["request_id"]; got != "req-42" {
		t.Errorf("expected request_id req-42, got %v", got)
	}
}

func TestResponseWriter_PreventsDuplicateWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusCreated {
		t.Errorf("expected status to remain %d, got %d", http.StatusCreated, rw.statusCode)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected recorded status %d, got %d", http.StatusCreated, rec.Code)
	}
}

func TestResponseWriter_WriteTriggersWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	if _, err := rw.Write([]byte("hello")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rw.statusCode != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rw.statusCode)
	}
	if !rw.headerWritten {
		t.Error("expected headerWritten to be true")
	}
}
