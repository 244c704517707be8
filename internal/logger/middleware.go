package logger

import (
	"net/http"
	"time"
)

// responseWriter captures the status code and body size written by the
// downstream handler.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// Middleware injects l into the request context and logs one line per
// request with method, uri, status, size, and duration.
func Middleware(l *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			uri := r.RequestURI
			method := r.Method

			lw := &responseWriter{ResponseWriter: w}
			next.ServeHTTP(lw, r.WithContext(l.WithContext(r.Context())))

			l.Info().
				Str("uri", uri).
				Str("method", method).
				Int("status", lw.status).
				Dur("duration", time.Since(start)).
				Int("size", lw.size).
				Send()
		})
	}
}
