package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/dbx"
	"github.com/dmitrijs2005/wordmaster/internal/server/models"
	snapshotsrepo "github.com/dmitrijs2005/wordmaster/internal/server/repositories/snapshots"
	usersrepo "github.com/dmitrijs2005/wordmaster/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	mu     sync.Mutex
	users  []*models.User
	getErr error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.users {
		if strings.EqualFold(e.Username, u.Username) {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = int64(len(f.users) + 1)
	u.DateJoined = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cp := *u
	f.users = append(f.users, &cp)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.users {
		if strings.EqualFold(e.Username, login) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, e := range f.users {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeSnapshotsRepo struct {
	mu        sync.Mutex
	rows      []models.Snapshot
	clock     time.Time
	createErr error
	latestErr error
	deleteErr error
}

func (f *fakeSnapshotsRepo) Create(_ context.Context, s *models.Snapshot) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.clock = f.clock.Add(time.Second)
	s.ID = int64(len(f.rows) + 1)
	s.CreatedAt = f.clock
	f.rows = append(f.rows, *s)
	return s, nil
}

func (f *fakeSnapshotsRepo) sorted() []models.Snapshot {
	out := append([]models.Snapshot(nil), f.rows...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeSnapshotsRepo) Latest(context.Context) (*models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	if len(f.rows) == 0 {
		return nil, common.ErrNotFound
	}
	s := f.sorted()[0]
	return &s, nil
}

func (f *fakeSnapshotsRepo) ListExpired(_ context.Context, keep int) ([]models.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted()
	if keep >= len(all) {
		return nil, nil
	}
	return all[keep:], nil
}

func (f *fakeSnapshotsRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.rows {
		if r.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	s *fakeSnapshotsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u: &fakeUsersRepo{},
		s: &fakeSnapshotsRepo{clock: time.Unix(1700000000, 0).UTC()},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository         { return m.u }
func (m *fakeRepoManager) Snapshots(dbx.DBTX) snapshotsrepo.Repository { return m.s }
