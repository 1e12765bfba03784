package api

import (
	"bytes"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/config"
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

// captureLog redirects the standard logger for the duration of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prev)
		log.SetFlags(flags)
	})
	return &buf
}

func apiLines(buf *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "[api] ") {
			out = append(out, line)
		}
	}
	return out
}

// newTestServer mounts a booted kernel on a Server with request logging on.
func newTestServer(t *testing.T) (*host.Host, *Server) {
	t.Helper()

	cfg := config.Default()
	cfg.Simulation.UpdateInterval = 100
	cfg.Simulation.StepPeriod = time.Millisecond
	cfg.Simulation.ActiveSeeds = 0
	k := host.New(cfg)
	if _, err := k.Boot(); err != nil {
		t.Fatalf("Boot failed: %v", err)
	}

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := NewServer(&ServerConfig{EnableLogging: true})
	t.Cleanup(Mount(srv.Router(), k, hub))
	srv.SetKernel(k)
	return k, srv
}

func TestKernelLogging_ReportsGenerationAndTicks(t *testing.T) {
	k, srv := newTestServer(t)
	buf := captureLog(t)
	gen, before := k.Position()

	rec := do(t, srv.Handler(), http.MethodPost, "/api/tick", `{"count": 250}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	lines := apiLines(buf)
	if len(lines) != 1 {
		t.Fatalf("Expected one [api] line, got %d: %q", len(lines), lines)
	}
	line := lines[0]
	if !strings.HasPrefix(line, "[api] POST /api/tick 200 ") {
		t.Errorf("Unexpected request line: %q", line)
	}
	if !strings.Contains(line, "gen "+gen[:8]+" ") {
		t.Errorf("Line %q does not carry generation %s", line, gen[:8])
	}
	want := "tick " + itoa(before) + "->" + itoa(before+250)
	if !strings.HasSuffix(line, want) {
		t.Errorf("Line %q does not end with %q", line, want)
	}
}

func TestKernelLogging_ReadShowsSingleTick(t *testing.T) {
	k, srv := newTestServer(t)
	buf := captureLog(t)
	_, tick := k.Position()

	do(t, srv.Handler(), http.MethodGet, "/api/health", "")

	lines := apiLines(buf)
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "tick "+itoa(tick)) {
		t.Errorf("Unexpected lines: %q", lines)
	}
}

func TestKernelLogging_WithoutClock(t *testing.T) {
	buf := captureLog(t)
	h := KernelLogging(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("abc"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	lines := apiLines(buf)
	if len(lines) != 1 {
		t.Fatalf("Expected one line, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "[api] GET /x 418 ") || !strings.HasSuffix(lines[0], " 3 bytes") {
		t.Errorf("Unexpected line: %q", lines[0])
	}
}

func TestServerHandler_LoggingDisabled(t *testing.T) {
	_, srv := newTestServer(t)
	srv.config.EnableLogging = false
	buf := captureLog(t)

	do(t, srv.Handler(), http.MethodGet, "/api/health", "")
	if lines := apiLines(buf); len(lines) != 0 {
		t.Errorf("Expected no [api] lines, got %q", lines)
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	})

	Chain(final, mark("outer"), mark("inner")).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "outer,inner,handler" {
		t.Errorf("Expected outer,inner,handler, got %s", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	captureLog(t)
	h := RecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshot", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected 500, got %d", rec.Code)
	}
	resp := parseAPIResponse(t, rec.Body)
	if resp.Success || resp.Error == nil || resp.Error.Code != "internal_panic" {
		t.Errorf("Unexpected envelope: %+v", resp)
	}
}

func TestContentTypeMiddleware(t *testing.T) {
	_, srv := newTestServer(t)
	captureLog(t)
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/tick", strings.NewReader(`{"count": 1}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("Expected 415, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/reset", "")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected bodiless POST to pass, got %d", rec.Code)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("Expected a minted uuid, got %q", rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-7")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "upstream-7" {
		t.Errorf("Expected upstream id echoed, got %q", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	called := false
	h := CORSMiddleware([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/update", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || called {
		t.Errorf("Expected preflight 204 without reaching handler, got %d called=%v", rec.Code, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("Missing allow-origin header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !called || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("Unlisted origin should pass through without CORS headers")
	}
}
