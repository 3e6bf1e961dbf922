// Package server initializes and runs the main application server.
// It opens the database pool, applies migrations, wires the session and
// employee services into the HTTP server, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/hradmin/internal/dbx"
	"github.com/dmitrijs2005/hradmin/internal/logging"
	"github.com/dmitrijs2005/hradmin/internal/server/auth"
	"github.com/dmitrijs2005/hradmin/internal/server/config"
	"github.com/dmitrijs2005/hradmin/internal/server/metrics"
	"github.com/dmitrijs2005/hradmin/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/hradmin/internal/server/services"

	hs "github.com/dmitrijs2005/hradmin/internal/server/http"
)

// DriverName is the database/sql driver registered by pgx/stdlib.
const DriverName = "pgx"

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	codec           *auth.Codec
	sessionService  *services.SessionService
	employeeService *services.EmployeeService
	metrics         *metrics.Metrics
}

// OpenDB opens the connection pool described by c.
func OpenDB(ctx context.Context, c *config.Config) (*sql.DB, error) {
	return dbx.Open(ctx, DriverName, c.DatabaseDSN, dbx.PoolOptions{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: c.DBConnMaxLifetime,
		ConnMaxIdleTime: c.DBConnMaxIdleTime,
	})
}

// NewApp connects to the database, migrates the schema and builds the
// services. The returned App owns the pool and closes it when Run returns.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	codec, err := auth.NewCodec([]byte(c.SecretKey), c.TokenIssuer)
	if err != nil {
		return nil, fmt.Errorf("codec init error: %w", err)
	}

	db, err := OpenDB(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		repomanager:     rm,
		codec:           codec,
		sessionService:  services.NewSessionService(db, rm, codec, c.DBQueryTimeout, logger.With("module", "sessions")),
		employeeService: services.NewEmployeeService(db, rm, c.DBQueryTimeout),
		metrics:         metrics.New(),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := hs.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.codec,
		app.sessionService, app.employeeService, app.metrics, app.config.CORSAllowOrigin)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
