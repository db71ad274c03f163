package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

// Chain wraps handler so that the first middleware is the outermost. Nil entries are skipped.
func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// RecoveryMiddleware turns panics into 500 responses. A response that was already
// started is left as is.
func RecoveryMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				if p := recover(); p != nil {
					logger.Error("panic while serving request",
						zap.Any("panic", p),
						zap.String("path", r.URL.Path),
						zap.Bool("response_started", rec.status != 0),
						zap.ByteString("stack", debug.Stack()),
					)
					if rec.status == 0 {
						writeError(w, http.StatusInternalServerError, "internal error")
					}
				}
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// LoggingMiddleware writes one line per request.
func LoggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.code()),
				zap.Duration("took", time.Since(started)),
			)
		})
	}
}

// RequestObserver receives per-request measurements.
type RequestObserver interface {
	ObserveRequest(method, path string, status int, took time.Duration)
}

// OtherRoute labels requests for paths outside the known routes.
const OtherRoute = "other"

// MetricsMiddleware reports every request to observer. Paths not listed in routes are
// reported as OtherRoute so the label set stays fixed.
func MetricsMiddleware(observer RequestObserver, routes []string) func(http.Handler) http.Handler {
	known := make(map[string]struct{}, len(routes))
	for _, route := range routes {
		known[route] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			route := OtherRoute
			if _, ok := known[r.URL.Path]; ok {
				route = r.URL.Path
			}
			observer.ObserveRequest(r.Method, route, rec.code(), time.Since(started))
		})
	}
}
