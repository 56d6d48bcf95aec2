package repository

import (
	"context"
	"database/sql"
	"time"

	"promohub/internal/user"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create is idempotent: repeated contact from the same chat id is a no-op.
func (r *PostgresUserRepository) Create(ctx context.Context, chatID int64) error {
	query := `INSERT INTO users (chat_id, created_at, claimed) VALUES ($1, NOW(), FALSE)
              ON CONFLICT (chat_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, chatID)
	return err
}

func (r *PostgresUserRepository) GetByChatID(ctx context.Context, chatID int64) (*user.User, error) {
	u := &user.User{}
	query := `SELECT id, chat_id, claimed, created_at FROM users WHERE chat_id = $1`

	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&u.ID,
		&u.ChatID,
		&u.Claimed,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return u, nil
}

// SetClaimed — одностороннее выставление флага, обратно не снимается.
func (r *PostgresUserRepository) SetClaimed(ctx context.Context, chatID int64) error {
	query := `UPDATE users SET claimed = TRUE WHERE chat_id = $1`
	_, err := r.db.ExecContext(ctx, query, chatID)
	return err
}

func (r *PostgresUserRepository) IsClaimed(ctx context.Context, chatID int64) (bool, error) {
	var claimed bool
	query := `SELECT claimed FROM users WHERE chat_id = $1`
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(&claimed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return claimed, err
}

func (r *PostgresUserRepository) CountNewSince(ctx context.Context, t time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE created_at >= $1`
	err := r.db.QueryRowContext(ctx, query, t).Scan(&count)
	return count, err
}

func (r *PostgresUserRepository) CountNewBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`
	err := r.db.QueryRowContext(ctx, query, from, to).Scan(&count)
	return count, err
}
