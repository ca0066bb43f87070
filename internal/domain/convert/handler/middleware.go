package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/FACorreiaa/invoice-converter/pkg/metrics"
)

// Recoverer turns a panic into a 500 response carrying the panic value and stack.
func Recoverer(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := debug.Stack()
			logger.Error("panic while serving request",
				slog.String("path", r.URL.Path),
				slog.Any("panic", rec),
				slog.String("stack", string(stack)))
			http.Error(w, fmt.Sprintf("panic: %v\n\n%s", rec, stack), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}

// RateLimit rejects requests once the limiter is exhausted.
func RateLimit(limiter *rate.Limiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// CountRequests records the response status of every request.
func CountRequests(m *metrics.Metrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			m.Request(strconv.Itoa(rec.status))
		}()
		next.ServeHTTP(rec, r)
	})
}

// Health reports that the process is serving.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
