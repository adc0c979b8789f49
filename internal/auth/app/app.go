package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	httpapi "github.com/sableforge/authd/internal/auth/http"
	"github.com/sableforge/authd/internal/auth/mail"
	"github.com/sableforge/authd/internal/auth/mailq"
	"github.com/sableforge/authd/internal/auth/service"
	"github.com/sableforge/authd/internal/auth/store"
	"github.com/sableforge/authd/internal/auth/store/drivers/postgres"
	"github.com/sableforge/authd/internal/auth/store/drivers/sqlite"
	"github.com/sableforge/authd/pkg/jwtx"
	"github.com/sableforge/authd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	rdb   *redis.Client // nil when REDIS_URL is unset
	codec *jwtx.Codec

	// Mail pipeline
	mailer mail.Mailer
	queue  *mailq.Queue  // nil without Redis
	worker *mailq.Worker // nil without Redis

	// Services
	authService         *service.AuthService
	mfaService          *service.MFAService
	housekeepingService *service.HousekeepingService // nil without Redis

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "authd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	codec, err := jwtx.NewCodec(jwtx.Config{
		Secret:        cfg.SecretKey,
		Algorithm:     cfg.Algorithm,
		Issuer:        cfg.Issuer,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Temp2FATTL:    cfg.Temp2FATokenTTL,
		ActivationTTL: cfg.ActivationTokenTTL,
	})
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	if err := app.initMail(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.worker != nil {
		app.worker.Start()
	}
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
	}

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Drain the mail pipeline before dropping its transport
	if app.worker != nil {
		app.worker.Stop()
	}
	if app.housekeepingService != nil {
		app.housekeepingService.Stop()
	}
	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error("error closing redis connection", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the configured database and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(context.Background(), app.cfg.DatabaseURL)
	case "", "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully",
		"driver", app.cfg.DatabaseDriver)
	return nil
}

// initMail sets up the mailer and, when Redis is configured, the queue and
// its delivery worker.
func (app *Application) initMail() error {
	if app.cfg.SMTPHost != "" {
		mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUser,
			Password: app.cfg.SMTPPassword,
			From:     app.cfg.SMTPFrom,
			FromName: app.cfg.SMTPFromName,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize smtp mailer: %w", err)
		}
		app.mailer = mailer
	} else {
		app.mailer = &mail.LogMailer{}
		app.logger.Warn("SMTP_HOST not set, outgoing mail will be logged only")
	}

	if app.cfg.RedisURL == "" {
		app.logger.Warn("REDIS_URL not set, mail will be sent inline without a queue")
		return nil
	}

	opts, err := redis.ParseURL(app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to parse redis url: %w", err)
	}
	app.rdb = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	app.queue = mailq.NewQueue(app.rdb)
	app.worker = mailq.NewWorker(app.queue, app.mailer, app.logger, app.cfg.MailSendRate)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	var notifier service.Notifier
	if app.queue != nil {
		notifier = &service.NotificationService{
			Queue:       app.queue,
			FrontendURL: app.cfg.FrontendURL,
			Logger:      app.logger,
		}
	} else {
		notifier = &service.DirectNotifier{
			Mailer:      app.mailer,
			FrontendURL: app.cfg.FrontendURL,
			Logger:      app.logger,
		}
	}

	app.authService = &service.AuthService{
		Store:    app.db,
		Codec:    app.codec,
		Notifier: notifier,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: app.cfg.Issuer,
	}

	if app.queue != nil {
		app.housekeepingService = service.NewHousekeepingService(
			app.queue,
			app.logger,
			app.cfg.HousekeepingInterval,
			0, // default dead-letter retention
		)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.rdb,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.MFAService = app.mfaService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
