package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia"
	"github.com/olgasafonova/wikipedia-mcp-server/internal/wikipedia/wikipediatest"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestRecoverPanic(t *testing.T) {
	func() {
		defer recoverPanic(quietLogger(), "test operation")
		panic("test panic")
	}()

	// If we get here, the panic was recovered
}

type mockHandler struct {
	called bool
	body   []byte
	err    error
}

func (m *mockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.called = true
	if r.Body != nil {
		m.body, m.err = io.ReadAll(r.Body)
	}
	w.WriteHeader(http.StatusOK)
}

func TestSecurityMiddlewareBasic(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 1000})

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	sm.ServeHTTP(w, req)

	if !handler.called {
		t.Error("Handler should have been called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestSecurityMiddlewareRejectsDeclaredOversize(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 8})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"jsonrpc":"2.0"}`))
	w := httptest.NewRecorder()
	sm.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", w.Code)
	}
	if handler.called {
		t.Error("Oversized request should not reach the handler")
	}
}

func TestSecurityMiddlewareBodyLimit(t *testing.T) {
	handler := &mockHandler{}
	sm := NewSecurityMiddleware(handler, quietLogger(), SecurityConfig{MaxBodySize: 8})

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"jsonrpc":"2.0"}`))
	req.ContentLength = -1 // unknown length, e.g. chunked
	sm.ServeHTTP(httptest.NewRecorder(), req)

	if !handler.called {
		t.Fatal("Handler should have been called")
	}
	if handler.err == nil {
		t.Error("Reading an oversized body should fail")
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	srv := wikipediatest.NewFixtureServer()
	t.Cleanup(srv.Close)

	cfg := wikipedia.DefaultConfig()
	cfg.APIURL = srv.Endpoint()
	client, err := wikipedia.NewClient(cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	return newRouter(newServer(client, quietLogger(), nil), quietLogger(), DefaultSecurityConfig())
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding health response: %v", err)
	}
	if body["status"] != "ok" || body["name"] != ServerName || body["version"] != ServerVersion {
		t.Errorf("unexpected health response %v", body)
	}
}

func TestRouterMetrics(t *testing.T) {
	router := newTestRouter(t)

	// one request so the HTTP collectors have a sample
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "wikipedia_mcp_http_requests_total") {
		t.Error("metrics output should include the HTTP request counter")
	}
}

func TestRouterSecurityHeaders(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/nope"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))

		if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("%s: X-Content-Type-Options = %q, want nosniff", path, got)
		}
		if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("%s: X-Frame-Options = %q, want DENY", path, got)
		}
	}
}

func TestRouterMCPBodyLimit(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(strings.Repeat("x", 2<<20)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestRouterUnknownPath(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRunVersion(t *testing.T) {
	if err := run([]string{"-version"}); err != nil {
		t.Errorf("run -version returned error: %v", err)
	}
}

func TestRunBadFlag(t *testing.T) {
	if err := run([]string{"-no-such-flag"}); err == nil {
		t.Error("expected an error for an unknown flag")
	}
}

func TestRunBadConfig(t *testing.T) {
	t.Setenv("WIKIPEDIA_SEARCH_LIMIT", "0")
	t.Chdir(t.TempDir())

	if err := run(nil); err == nil {
		t.Error("expected an error for an invalid search limit")
	}
}
