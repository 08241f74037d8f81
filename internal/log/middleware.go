package log

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const loggerKey contextKey = "logger"

// FromContext returns the request-scoped logger, or a plain default if
// the middleware did not run.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey).(*Logger); ok {
		return logger
	}
	return New(Config{Component: ComponentHTTP})
}

// Middleware injects a request-scoped logger into the context and logs
// each request once it completes.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestLogger := logger.With(
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldRemoteAddr, r.RemoteAddr,
			)

			ctx := context.WithValue(r.Context(), loggerKey, requestLogger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r.WithContext(ctx))

			requestLogger.Info("request completed",
				FieldStatusCode, recorder.status,
				FieldDuration, time.Since(start).Milliseconds(),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
