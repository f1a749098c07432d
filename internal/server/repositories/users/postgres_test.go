package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/wordmaster/internal/common"
	"github.com/dmitrijs2005/wordmaster/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*password_hash,\s*email,\s*first_name,\s*last_name,\s*is_staff,\s*is_active\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id,\s*date_joined$`

var userCols = []string{"id", "username", "password_hash", "email", "first_name", "last_name", "is_staff", "is_active", "date_joined"}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "hash", "a@example.com", "Alice", "", false, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(int64(42), joined))

	u := &models.User{Username: "alice", PasswordHash: "hash", Email: "a@example.com", FirstName: "Alice", IsActive: true}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	assert.Equal(t, joined, got.DateJoined)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Duplicate(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key"})

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	require.ErrorIs(t, err, common.ErrAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Username: "alice"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGetUserByLogin_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*username,.*date_joined\s+FROM\s+users\s+WHERE\s+lower\(username\)\s*=\s*lower\(\$1\)$`
	mock.ExpectQuery(q).
		WithArgs("ALICE").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "alice", "hash", "", "", "", false, true, time.Unix(0, 0)))

	got, err := repo.GetUserByLogin(context.Background(), "ALICE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsActive)
}

func TestGetUserByLogin_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users`).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetUserByLogin(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetUserByID(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(7), "bob", "hash", "b@example.com", "Bob", "B", true, true, time.Unix(10, 0)))

	got, err := repo.GetUserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Username)
	assert.True(t, got.IsStaff)

	mock.ExpectQuery(`FROM\s+users`).WillReturnError(errors.New("conn reset"))
	_, err = repo.GetUserByID(context.Background(), 7)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}
