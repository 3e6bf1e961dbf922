// Package http exposes the hradmin API over HTTP. Every request passes the
// pipeline assembled in pipeline.go before reaching a route handler.
package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/hradmin/internal/logging"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/metrics"
	"github.com/dmitrijs2005/hradmin/internal/server/models"
	"github.com/dmitrijs2005/hradmin/internal/server/services"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const shutdownTimeout = 10 * time.Second

// CredentialVerifier turns a presented credential into claims.
type CredentialVerifier interface {
	Verify(cred auth.Credential) (*auth.Claims, error)
}

// SessionManager is the session side of the service layer.
type SessionManager interface {
	Login(ctx context.Context, loginName, password string) (*services.LoginResult, error)
	Authorize(ctx context.Context, id auth.Identity) (*models.Employee, error)
	Logout(ctx context.Context, id auth.Identity) error
}

// EmployeeDirectory reads employee records.
type EmployeeDirectory interface {
	Info(ctx context.Context, id int64) (*models.Employee, error)
}

type HTTPServer struct {
	address    string
	logger     logging.Logger
	codec      CredentialVerifier
	sessions   SessionManager
	employees  EmployeeDirectory
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	corsOrigin string
}

func NewHTTPServer(a string, l logging.Logger, codec CredentialVerifier, sessions SessionManager,
	employees EmployeeDirectory, m *metrics.Metrics, corsOrigin string) *HTTPServer {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		codec:      codec,
		sessions:   sessions,
		employees:  employees,
		metrics:    m,
		tracer:     otel.Tracer("github.com/dmitrijs2005/hradmin/internal/server/http"),
		corsOrigin: corsOrigin,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
