package db

import (
	"context"
	"database/sql"
	"fmt"
)

// promotion_clicks carries no foreign key to promotions: click logging is
// best-effort and must accept ids of promotions deleted mid-flight.
// Cascade on delete is handled inside the repository transaction instead.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    chat_id BIGINT UNIQUE NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    claimed BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS promotions (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    link TEXT NOT NULL,
    preview_image_file_id TEXT,
    image_file_id TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS promotion_clicks (
    id BIGSERIAL PRIMARY KEY,
    promotion_id BIGINT NOT NULL,
    user_id BIGINT,
    action TEXT NOT NULL,
    clicked_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_chat_id ON users (chat_id);
CREATE INDEX IF NOT EXISTS idx_promotion_clicks_promo ON promotion_clicks (promotion_id);
CREATE INDEX IF NOT EXISTS idx_promotion_clicks_action ON promotion_clicks (action);
`

// EnsureSchema выполняется один раз при старте процесса.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
