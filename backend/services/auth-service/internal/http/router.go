package httpserver

import (
	"net/http"

	"docportal/backend/services/auth-service/internal/http/middleware"
)

const (
	signupPath  = "/api/authentication/signup"
	loginPath   = "/api/authentication/login"
	logoutPath  = "/api/authentication/logout"
	mePath      = "/api/authentication/me"
	healthPath  = "/health"
	metricsPath = "/metrics"
)

// Routes aggregates handlers for HTTP server.
type Routes struct {
	Signup  http.HandlerFunc
	Login   http.HandlerFunc
	Logout  http.HandlerFunc
	Me      http.HandlerFunc
	Health  http.HandlerFunc
	Metrics http.Handler
}

// Paths lists the paths NewRouter mounts for r.
func (r Routes) Paths() []string {
	var paths []string
	add := func(set bool, path string) {
		if set {
			paths = append(paths, path)
		}
	}
	add(r.Signup != nil, signupPath)
	add(r.Login != nil, loginPath)
	add(r.Logout != nil, logoutPath)
	add(r.Me != nil, mePath)
	add(r.Health != nil, healthPath)
	add(r.Metrics != nil, metricsPath)
	return paths
}

// NewRouter wires all HTTP routes. Me is served only behind authMiddleware.
func NewRouter(routes Routes, authMiddleware func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()
	if routes.Signup != nil {
		mux.Handle(signupPath, method(http.MethodPost, routes.Signup))
	}
	if routes.Login != nil {
		mux.Handle(loginPath, method(http.MethodPost, routes.Login))
	}
	if routes.Logout != nil {
		mux.Handle(logoutPath, method(http.MethodPost, routes.Logout))
	}
	if routes.Me != nil {
		mux.Handle(mePath, method(http.MethodGet, middleware.Chain(routes.Me, authMiddleware)))
	}
	if routes.Health != nil {
		mux.Handle(healthPath, method(http.MethodGet, routes.Health))
	}
	if routes.Metrics != nil {
		mux.Handle(metricsPath, method(http.MethodGet, routes.Metrics))
	}
	return mux
}

func method(expected string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
