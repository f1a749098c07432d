// Package server wires the sync server together: configuration, logging,
// PostgreSQL, object storage, the HTTP API and the snapshot retention job.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/dmitrijs2005/wordmaster/internal/server/blobstore"
	"github.com/dmitrijs2005/wordmaster/internal/server/config"
	"github.com/dmitrijs2005/wordmaster/internal/server/httpapi"
	"github.com/dmitrijs2005/wordmaster/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/wordmaster/internal/server/retention"
	"github.com/dmitrijs2005/wordmaster/internal/server/services"
	"go.uber.org/zap"
)

const startupTimeout = 30 * time.Second

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}

	newBlobStore = func(ctx context.Context, c *config.Config) (blobstore.Store, error) {
		s, err := blobstore.NewS3Store(ctx, blobstore.S3Config{
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	zap             *zap.Logger
	db              *sql.DB
	userService     *services.UserService
	snapshotService *services.SnapshotService
}

// NewApp connects to PostgreSQL, applies migrations and prepares the
// snapshot bucket. Nothing is served until Run.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, z, err := logging.NewProductionZap(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	blobs, err := newBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob storage init error: %w", err)
	}

	return &App{
		config:          c,
		logger:          logger,
		zap:             z,
		db:              db,
		userService:     services.NewUserService(db, rm, c, logger.With("module", "users")),
		snapshotService: services.NewSnapshotService(db, rm, blobs, c.MaxUploadBytes, logger.With("module", "snapshots")),
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := httpapi.NewHTTPServer(app.config.ListenAddr, app.logger, app.zap, app.userService, app.snapshotService, httpapi.Options{
		MaxUploadBytes: app.config.MaxUploadBytes,
		RateLimit:      app.config.RateLimit,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops the retention job and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var job *retention.Job
	if app.config.RetentionCount > 0 {
		job = retention.New(app.snapshotService, app.config.RetentionCount, app.config.RetentionInterval, app.logger)
		if err := job.Start(); err != nil {
			return fmt.Errorf("retention init error: %w", err)
		}
	}

	var (
		wg     sync.WaitGroup
		srvErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		srvErr = app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if job != nil {
		job.Stop()
	}

	app.logger.Info(context.Background(), "App stopped")
	return errors.Join(srvErr, app.close())
}

func (app *App) close() error {
	err := app.db.Close()
	// stderr sync fails on some platforms, nothing to do about it
	_ = app.zap.Sync()
	return err
}
