package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/client/client"
	"github.com/dmitrijs2005/wordmaster/internal/client/config"
	"github.com/dmitrijs2005/wordmaster/internal/client/localstore"
	"github.com/dmitrijs2005/wordmaster/internal/client/services"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type watermarkReader interface {
	Watermark(ctx context.Context) (int64, bool, error)
}

type App struct {
	config          *config.Config
	log             logging.Logger
	authService     services.AuthService
	learningService services.LearningService
	syncService     services.SyncService
	store           watermarkReader
	closers         []io.Closer

	mu      sync.Mutex
	mode    Mode
	session *services.Session

	reader  *bufio.Reader
	out     io.Writer
	shuffle func(n int, swap func(i, j int))
	now     func() time.Time
}

// NewApp opens the local store, ensures its schema and wires the services.
// A schema failure is returned wrapped in localstore.ErrSchema.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	var logOut io.Writer = os.Stderr
	var closers []io.Closer
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut = f
		closers = append(closers, f)
	}
	logger, err := logging.NewTextLogger(logOut, c.LogLevel)
	if err != nil {
		closeAll(closers)
		return nil, err
	}

	store, err := localstore.Open(c.DatabasePath, logger)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	closers = append(closers, store)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		closeAll(closers)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	closers = append(closers, apiClient)

	return &App{
		config:          c,
		log:             logger,
		authService:     services.NewAuthService(apiClient, store, logger),
		learningService: services.NewLearningService(store, logger),
		syncService:     services.NewSyncService(apiClient, store, logger),
		store:           store,
		closers:         closers,
		reader:          bufio.NewReader(os.Stdin),
		out:             os.Stdout,
		shuffle:         rand.Shuffle,
		now:             time.Now,
	}, nil
}

// closeAll closes in reverse order of opening.
func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i].Close())
	}
	return errors.Join(errs...)
}

// Run blocks in the REPL until the user exits, then releases resources.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := closeAll(a.closers); err != nil {
			a.log.Warn(ctx, "error closing resources", "error", err)
		}
	}()
	a.Root(ctx)
	return nil
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session != nil
}

func (a *App) currentSession() *services.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

func (a *App) setSession(s *services.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = s
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// mode shown in the prompt. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
