// Package cmd assembles the application: config, logger, persistence,
// services, controllers, router, and the HTTP server lifecycle.
package cmd

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"salesvc/api"
	"salesvc/api/health"
	salectrl "salesvc/api/sale"
	saleapp "salesvc/application/sale"
	"salesvc/config"
	"salesvc/domain/sale"
	"salesvc/infrastructure/events"
	"salesvc/infrastructure/persistence/mocks"
	"salesvc/infrastructure/persistence/mysql"
	"salesvc/infrastructure/persistence/retry"
	"salesvc/pkg/logger"

	"go.uber.org/zap"
)

type App struct {
	cfg    *config.Config
	router *api.Router
}

// NewApp wires the whole application. The repository implementation is
// chosen by database.type: "mysql" connects via GORM, anything else runs on
// the in-memory store.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return nil, err
	}

	var saleRepo sale.Repository
	var sqlDB *sql.DB

	if cfg.Database.Type == "mysql" {
		mysqlCfg := &mysql.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Username:        cfg.Database.Username,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			LogLevel:        cfg.Log.Level,
		}

		db, err := mysqlCfg.Connect()
		if err != nil {
			return nil, err
		}
		sqlDB, err = db.DB()
		if err != nil {
			return nil, err
		}

		saleRepo = mysql.NewSaleRepository(db, retryConfigFrom(&cfg.Database.Retry))
	} else {
		logger.Info("Using in-memory persistence layer")
		saleRepo = mocks.NewMockSaleRepository()
	}

	publisher := events.NewLoggingEventPublisher()
	saleService := saleapp.NewService(saleRepo, publisher)

	healthController := health.NewController(cfg, sqlDB)
	saleController := salectrl.NewController(saleService)

	router := api.NewRouter(cfg, healthController, saleController)
	router.SetupRoutes()

	return &App{
		cfg:    cfg,
		router: router,
	}, nil
}

func retryConfigFrom(cfg *config.RetryConfig) retry.Config {
	return retry.Config{
		Enabled:            cfg.Enabled,
		MaxAttempts:        cfg.MaxAttempts,
		InitialDelay:       cfg.InitialDelay,
		MaxDelay:           cfg.MaxDelay,
		BackoffFactor:      cfg.BackoffFactor,
		JitterEnabled:      cfg.JitterEnabled,
		RetryOnDeadlock:    cfg.RetryOnDeadlock,
		RetryOnLockTimeout: cfg.RetryOnLockTimeout,
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down within the configured timeout so in-flight requests can finish.
func (a *App) Run(port string) error {
	if port == "" {
		port = a.cfg.Server.Port
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      a.router.GetEngine(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting",
			zap.String("port", port),
			zap.String("env", a.cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return logger.Sync()
}
