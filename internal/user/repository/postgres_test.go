package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresUserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresUserRepository(db), mock
}

func TestCreateIsIdempotent(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// повторный контакт: конфликт, ни одной строки — не ошибка
	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Create(context.Background(), 42))
	require.NoError(t, repo.Create(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByChatID(t *testing.T) {
	repo, mock := newMock(t)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, chat_id, claimed, created_at FROM users").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_id", "claimed", "created_at"}).
			AddRow(int64(1), int64(42), true, created))

	u, err := repo.GetByChatID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ChatID)
	assert.True(t, u.Claimed)
	assert.Equal(t, created, u.CreatedAt)
}

func TestSetClaimed(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec("UPDATE users SET claimed = TRUE").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetClaimed(context.Background(), 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsClaimedUnknownUserIsFalse(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT claimed FROM users").
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"claimed"}))

	claimed, err := repo.IsClaimed(context.Background(), 77)
	require.NoError(t, err, "absent row is not an error")
	assert.False(t, claimed)
}

func TestCountNewBetween(t *testing.T) {
	repo, mock := newMock(t)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))

	n, err := repo.CountNewBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
