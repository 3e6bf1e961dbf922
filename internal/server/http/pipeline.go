package http

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// stage wraps a handler with one concern of request processing.
type stage func(http.Handler) http.Handler

// stages lists the pipeline outermost first.
//
//	requestID  correlation id on the context and the response
//	tracing    span, access log, request metrics, panic recovery
//	cors       CORS headers on every response, preflight answered here
//	identify   bearer credential to identity, never rejects
//
// Protected routes additionally pass requireSession inside the router.
func (s *HTTPServer) stages() []stage {
	return []stage{
		s.requestID,
		s.tracing,
		s.cors,
		s.identify,
	}
}

// Handler returns the router wrapped in the full pipeline.
func (s *HTTPServer) Handler() http.Handler {
	var h http.Handler = s.router()
	st := s.stages()
	for i := len(st) - 1; i >= 0; i-- {
		h = st[i](h)
	}
	return h
}

func (s *HTTPServer) router() *httprouter.Router {
	router := httprouter.New()
	router.HandleOPTIONS = false
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	s.unprotected(router, http.MethodGet, "/", s.handleWelcome)
	s.unprotected(router, http.MethodGet, "/metrics", s.metrics.Handler().ServeHTTP)
	s.unprotected(router, http.MethodPost, "/v1/login", s.handleLogin)
	s.unprotected(router, http.MethodPost, "/v1/logout", s.handleLogout)

	s.protected(router, http.MethodGet, "/v1/api/session", s.handleSession)
	s.protected(router, http.MethodGet, "/v1/api/employees/:employee_id", s.handleEmployeeInfo)

	return router
}

func (s *HTTPServer) unprotected(router *httprouter.Router, method, path string, h http.HandlerFunc) {
	router.Handler(method, path, named(path, h))
}

func (s *HTTPServer) protected(router *httprouter.Router, method, path string, h http.HandlerFunc) {
	router.Handler(method, path, named(path, s.requireSession(h)))
}
