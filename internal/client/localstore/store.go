package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/wordmaster/internal/client/migrations"
	"github.com/dmitrijs2005/wordmaster/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
	"github.com/dmitrijs2005/wordmaster/internal/logging"

	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

type Store struct {
	db  *sql.DB
	x   *sqlx.DB
	log logging.Logger

	schemaMu sync.Mutex
	ready    atomic.Bool

	// writeMu is the single-writer lock of the local database.
	writeMu sync.Mutex

	now func() time.Time
}

// DSN builds the driver connection string for a database file.
func DSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return "file:" + path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)"
}

// Open opens (creating if needed) the database file at path. The schema is
// not touched until EnsureSchema.
func Open(path string, log logging.Logger) (*Store, error) {
	db, err := sql.Open(driverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}
	return New(db, log), nil
}

// New wraps an already opened database handle.
func New(db *sql.DB, log logging.Logger) *Store {
	return &Store{
		db:  db,
		x:   sqlx.NewDb(db, driverName),
		log: log,
		now: time.Now,
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema applies the embedded migrations and marks the store ready.
// Calling it again after success is a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.ready.Load() {
		return nil
	}

	s.writeMu.Lock()
	err := migrations.Up(ctx, s.db)
	s.writeMu.Unlock()
	if err != nil {
		s.log.Error(ctx, "schema migration failed", "error", err)
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	version, err := migrations.Version(ctx, s.db)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSchema, err)
	}

	s.ready.Store(true)
	s.log.Debug(ctx, "local schema ready", "version", version)
	return nil
}

// Ready reports whether EnsureSchema has succeeded.
func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) checkReady() error {
	if !s.ready.Load() {
		return ErrNotReady
	}
	return nil
}

// write runs fn in a transaction while holding the writer lock.
func (s *Store) write(ctx context.Context, op string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if err := s.checkReady(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return storageErr(op, dbx.WithTx(ctx, s.db, nil, fn))
}

// touch moves the watermark forward after a local edit, to at or one second
// past the current value, whichever is later, so the edit is pushed even
// when the device clock lags the server. Devices that never synced keep no
// watermark so their first sync is a pull.
func touch(ctx context.Context, tx dbx.DBTX, at time.Time) error {
	md := metadata.NewSQLiteRepository(tx)
	current, ok, err := md.GetInt64(ctx, metadata.KeyLastUpdate)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return md.SetInt64(ctx, metadata.KeyLastUpdate, max(at.Unix(), current+1))
}

// Watermark returns the stored sync watermark in Unix seconds; ok is false
// when the device never synced.
func (s *Store) Watermark(ctx context.Context) (int64, bool, error) {
	if err := s.checkReady(); err != nil {
		return 0, false, err
	}
	v, ok, err := metadata.NewSQLiteRepository(s.db).GetInt64(ctx, metadata.KeyLastUpdate)
	if err != nil {
		return 0, false, storageErr("get watermark", err)
	}
	return v, ok, nil
}

func (s *Store) SetWatermark(ctx context.Context, ts int64) error {
	return s.write(ctx, "set watermark", func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).SetInt64(ctx, metadata.KeyLastUpdate, ts)
	})
}

// Session returns the persisted session token and user id.
func (s *Store) Session(ctx context.Context) (token string, userID int64, ok bool, err error) {
	if err := s.checkReady(); err != nil {
		return "", 0, false, err
	}
	md := metadata.NewSQLiteRepository(s.db)
	raw, err := md.Get(ctx, metadata.KeySessionToken)
	if err != nil {
		return "", 0, false, storageErr("get session", err)
	}
	id, found, err := md.GetInt64(ctx, metadata.KeySessionUser)
	if err != nil {
		return "", 0, false, storageErr("get session", err)
	}
	if !found {
		return "", 0, false, nil
	}
	return string(raw), id, true, nil
}

// SaveSession persists the session; token may be empty for offline sessions.
func (s *Store) SaveSession(ctx context.Context, token string, userID int64) error {
	return s.write(ctx, "save session", func(ctx context.Context, tx dbx.DBTX) error {
		md := metadata.NewSQLiteRepository(tx)
		var err error
		if token == "" {
			err = md.Delete(ctx, metadata.KeySessionToken)
		} else {
			err = md.Set(ctx, metadata.KeySessionToken, []byte(token))
		}
		if err != nil {
			return err
		}
		return md.SetInt64(ctx, metadata.KeySessionUser, userID)
	})
}

func (s *Store) ClearSession(ctx context.Context) error {
	return s.write(ctx, "clear session", func(ctx context.Context, tx dbx.DBTX) error {
		md := metadata.NewSQLiteRepository(tx)
		if err := md.Delete(ctx, metadata.KeySessionToken); err != nil {
			return err
		}
		return md.Delete(ctx, metadata.KeySessionUser)
	})
}
