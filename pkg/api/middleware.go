package api

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rainmanp7/holokernel-EBOGS/pkg/errors"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so that the first middleware sees the request first.
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}

// KernelClock reports where the kernel stands without copying the population.
type KernelClock interface {
	Position() (generation string, tick uint32)
}

// CORSMiddleware admits browser requests from the listed origins. The kernel
// API only reads with GET and drives with POST.
func CORSMiddleware(allowedOrigins []string) Middleware {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := w.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
					h.Set("Access-Control-Expose-Headers", "X-Request-ID")
					h.Add("Vary", "Origin")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the status and size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// Hijack lets the /ws upgrade through the recorder.
func (rec *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := rec.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func (rec *statusRecorder) Flush() {
	if f, ok := rec.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// KernelLogging logs one line per request with the generation it was served
// under and the tick before and after it ran:
//
//	[api] POST /api/update 200 1ms 412 bytes gen 6f1c2a9e tick 100->200
//
// A nil clock leaves the kernel position out.
func KernelLogging(clock KernelClock) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var gen string
			var before uint32
			if clock != nil {
				gen, before = clock.Position()
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			took := formatLatency(time.Since(start))

			if clock == nil {
				log.Printf("[api] %s %s %d %s %d bytes", r.Method, r.URL.Path, rec.status, took, rec.bytes)
				return
			}
			_, after := clock.Position()
			log.Printf("[api] %s %s %d %s %d bytes gen %s %s",
				r.Method, r.URL.Path, rec.status, took, rec.bytes, shortGeneration(gen), tickSpan(before, after))
		})
	}
}

func shortGeneration(gen string) string {
	if len(gen) > 8 {
		return gen[:8]
	}
	return gen
}

func tickSpan(before, after uint32) string {
	b := strconv.FormatUint(uint64(before), 10)
	if before == after {
		return "tick " + b
	}
	return "tick " + b + "->" + strconv.FormatUint(uint64(after), 10)
}

func formatLatency(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

// RecoveryMiddleware turns a handler panic into a 500 envelope.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				herr := errors.InternalPanic(rv).WithContext("path", r.URL.Path)
				log.Printf("[api] PANIC: %v\n%s", herr, debug.Stack())
				WriteHoloError(w, herr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ContentTypeMiddleware rejects POST bodies that are not JSON. Bodiless
// POSTs such as /api/reset pass through.
func ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.ContentLength > 0 &&
			!strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			WriteError(w, http.StatusUnsupportedMediaType,
				"unsupported_media_type", "Content-Type must be application/json")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestIDMiddleware echoes X-Request-ID, minting one when the caller sent none.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
