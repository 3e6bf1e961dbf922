package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/common"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	unmatchedRoute   = "unmatched"
	maxRequestIDSize = 128
)

const (
	corsAllowMethods  = "GET, POST, PUT, DELETE, PATCH, OPTIONS"
	corsAllowHeaders  = "Content-Type, Authorization, X-Requested-With, Accept, Origin, Access-Control-Request-Method, Access-Control-Request-Headers, X-Request-Id"
	corsExposeHeaders = "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, X-Request-Id"
	corsMaxAge        = "86400"
)

type requestIDKey struct{}

// requestInfo is filled in by inner stages and read by tracing once the
// request has been served.
type requestInfo struct {
	route  string
	userID int64
}

type requestInfoKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func infoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(*requestInfo)
	return info
}

// named records the matched route pattern for logs, metrics and span names.
func named(pattern string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if info := infoFrom(r.Context()); info != nil {
			info.route = pattern
		}
		trace.SpanFromContext(r.Context()).SetName(r.Method + " " + pattern)
		h.ServeHTTP(w, r)
	})
}

func (s *HTTPServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDSize {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (s *HTTPServer) tracing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", requestIDFrom(ctx)),
			),
		)
		defer span.End()

		info := &requestInfo{route: unmatchedRoute}
		ctx = context.WithValue(ctx, requestInfoKey{}, info)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(ctx, "panic serving request", "panic", fmt.Sprint(p), "stack", string(debug.Stack()))
				span.RecordError(fmt.Errorf("panic: %v", p))
				if !rec.wroteHeader {
					writeJSON(rec, http.StatusInternalServerError, errorBody{Error: "internal error"})
				}
			}

			elapsed := time.Since(start)
			span.SetAttributes(
				attribute.String("http.route", info.route),
				attribute.Int("http.response.status_code", rec.status),
			)
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}

			s.metrics.ObserveRequest(r.Method, info.route, rec.status, elapsed)
			s.logger.Info(ctx, "request",
				"request_id", requestIDFrom(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"route", info.route,
				"status", rec.status,
				"duration", elapsed,
				"user_id", info.userID,
			)
		}()

		next.ServeHTTP(rec, r.WithContext(ctx))
	})
}

func (s *HTTPServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.corsOrigin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		h.Set("Access-Control-Max-Age", corsMaxAge)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerCredential returns the credential of an "Authorization: Bearer"
// header. ok is false when the header is absent or uses another scheme.
func bearerCredential(r *http.Request) (auth.Credential, bool) {
	v, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return auth.Credential(v), true
}

// identify attaches the caller identity to the request. Unusable
// credentials yield the anonymous identity; rejecting is left to
// requireSession.
func (s *HTTPServer) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := auth.Anonymous()

		if cred, ok := bearerCredential(r); ok {
			claims, err := s.codec.Verify(cred)
			switch {
			case err == nil:
				id = auth.NewIdentity(claims.UserID(), cred)
				if info := infoFrom(ctx); info != nil {
					info.userID = id.UserID()
				}
			case errors.Is(err, common.ErrTokenExpired):
				s.logger.Warn(ctx, "credential expired", "request_id", requestIDFrom(ctx))
				s.metrics.CredentialFailure("expired")
			default:
				s.logger.Warn(ctx, "credential invalid", "request_id", requestIDFrom(ctx), "error", err)
				s.metrics.CredentialFailure("invalid")
			}
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(ctx, id)))
	})
}

// requireSession admits only callers holding the active session of an
// existing employee. Rejections never reach h.
func (s *HTTPServer) requireSession(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := auth.IdentityFromContext(ctx)

		if _, err := s.sessions.Authorize(ctx, id); err != nil {
			if errors.Is(err, common.ErrorUnauthorized) {
				s.metrics.AuthDecision(metrics.OutcomeRejected)
				s.logger.Warn(ctx, "access denied", "request_id", requestIDFrom(ctx), "user_id", id.UserID(), "reason", err.Error())
			} else {
				s.metrics.AuthDecision(metrics.OutcomeError)
			}
			s.writeError(w, r, err)
			return
		}

		s.metrics.AuthDecision(metrics.OutcomeAdmitted)
		h.ServeHTTP(w, r)
	})
}
