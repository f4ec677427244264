package db

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteUserLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	created, err := store.CreateUser(ctx, "alice", "a@x.com", "hash-1")
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	byEmail, err := store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "alice", byEmail.Username)
	assert.Equal(t, "hash-1", byEmail.PasswordHash)

	require.NoError(t, store.UpdatePassword(ctx, "a@x.com", "hash-2"))
	byID, err := store.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", byID.PasswordHash)
}

func TestSQLiteDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	_, err := store.CreateUser(ctx, "alice", "a@x.com", "h")
	require.NoError(t, err)
	_, err = store.CreateUser(ctx, "bob", "a@x.com", "h")
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestSQLiteNotFound(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	_, err := store.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetUserByID(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.UpdatePassword(ctx, "nobody@x.com", "h"), ErrNotFound)
}

func TestSQLiteListBooks(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.NotNil(t, books)

	_, err = store.DB.ExecContext(ctx, `INSERT INTO authors (id, name) VALUES (1, 'Astrid Lindgren'), (2, 'Michael Ende')`)
	require.NoError(t, err)
	_, err = store.DB.ExecContext(ctx, `
		INSERT INTO books (id, title, author_id, pages, year, image_url, favorite) VALUES
		(2, 'Momo', 2, 304, 1973, 'momo.jpg', 0),
		(1, 'Pippi Langstrumpf', 1, 160, 1945, 'pippi.jpg', 1)
	`)
	require.NoError(t, err)

	books, err = store.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Pippi Langstrumpf", books[0].Title)
	assert.Equal(t, "Astrid Lindgren", books[0].Author)
	assert.True(t, books[0].Favorite)
	assert.Equal(t, 304, books[1].Pages)
	assert.False(t, books[1].Favorite)
}

type codedErr struct{ code int }

func (e codedErr) Error() string { return "constraint failed" }
func (e codedErr) Code() int     { return e.code }

func newMockSQLite(t *testing.T) (*SQLite, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewSQLite(sqlDB), mock
}

func TestSQLiteCreateUserMapsConstraintCode(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+users`).
		WithArgs("bob", "a@x.com", "h", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(codedErr{code: sqliteConstraintUnique})

	_, err := store.CreateUser(context.Background(), "bob", "a@x.com", "h")
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteUpdatePasswordWrapsDriverError(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET password_hash = ?`)).
		WillReturnError(errors.New("disk I/O error"))

	err := store.UpdatePassword(context.Background(), "a@x.com", "h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "update password: disk I/O error")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSQLiteGetUserNoRows(t *testing.T) {
	store, mock := newMockSQLite(t)

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "created_at", "updated_at"}))

	_, err := store.GetUserByID(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}
