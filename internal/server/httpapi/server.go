// Package httpapi exposes the sync server over JSON/HTTP: account
// registration and login, and the last-update, download and upload
// endpoints for database snapshots.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/api"
	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// UserService is the account side used by the handlers.
type UserService interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
	Authenticate(ctx context.Context, token string) (int64, error)
}

// SnapshotService is the database side used by the handlers.
type SnapshotService interface {
	LastUpdate(ctx context.Context) (time.Time, error)
	Download(ctx context.Context) ([]byte, time.Time, error)
	Upload(ctx context.Context, userID int64, blob []byte) (time.Time, error)
}

// Options tune request limits.
type Options struct {
	// MaxUploadBytes bounds the decoded snapshot; the request body may be
	// a third larger because of base64.
	MaxUploadBytes int64
	// RateLimit is requests per minute and client IP on the auth and
	// upload routes. Zero disables limiting.
	RateLimit int
}

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address   string
	users     UserService
	snapshots SnapshotService
	logger    logging.Logger
	zap       *zap.Logger
	opts      Options
}

func NewHTTPServer(a string, l logging.Logger, z *zap.Logger, us UserService, ss SnapshotService, opts Options) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		zap:       z,
		users:     us,
		snapshots: ss,
		opts:      opts,
	}
}

// Routes builds the router with all middleware attached.
func (s *HTTPServer) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(s.zap))
	r.Use(Recoverer(s.zap))

	limited := func(r chi.Router) {
		if s.opts.RateLimit > 0 {
			r.Use(httprate.Limit(s.opts.RateLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					respondError(w, http.StatusTooManyRequests, "too many requests")
				}),
			))
		}
	}

	r.Get(api.PathHealth, s.health)

	r.Group(func(r chi.Router) {
		limited(r)
		r.Post(api.PathRegister, s.register)
		r.Post(api.PathLogin, s.login)
	})

	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(s.users))
		r.Get(api.PathLastUpdate, s.lastUpdate)
		r.Get(api.PathDownload, s.download)
		r.Group(func(r chi.Router) {
			limited(r)
			r.Post(api.PathUpload, s.upload)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
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
	<-stopped
	return nil
}
