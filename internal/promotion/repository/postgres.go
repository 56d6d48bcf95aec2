package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"promohub/internal/promotion"
)

type PostgresPromotionRepository struct {
	db *sql.DB
}

func NewPostgresPromotionRepository(db *sql.DB) *PostgresPromotionRepository {
	return &PostgresPromotionRepository{db: db}
}

// fieldColumns — полное отображение разрешённых полей на колонки.
// Имя колонки никогда не приходит снаружи, только из этой таблицы.
var fieldColumns = map[promotion.Field]string{
	promotion.FieldTitle:        "title",
	promotion.FieldDescription:  "description",
	promotion.FieldLink:         "link",
	promotion.FieldPreviewImage: "preview_image_file_id",
	promotion.FieldDetailImage:  "image_file_id",
}

func (r *PostgresPromotionRepository) Add(ctx context.Context, p *promotion.Promotion) error {
	query := `
        INSERT INTO promotions (title, description, link, preview_image_file_id, image_file_id, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		p.Title,
		p.Description,
		p.Link,
		p.PreviewImageFileID,
		p.ImageFileID,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *PostgresPromotionRepository) UpdateField(ctx context.Context, id int64, field promotion.Field, value string) error {
	col, ok := fieldColumns[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}

	query := fmt.Sprintf(`UPDATE promotions SET %s = $1 WHERE id = $2`, col)
	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the promotion and its click rows in one transaction.
func (r *PostgresPromotionRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM promotion_clicks WHERE promotion_id = $1`, id); err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if n == 0 {
		tx.Rollback()
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *PostgresPromotionRepository) List(ctx context.Context) ([]*promotion.Promotion, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, title, description, link, preview_image_file_id, image_file_id, created_at
        FROM promotions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var promos []*promotion.Promotion
	for rows.Next() {
		p := &promotion.Promotion{}
		err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Description,
			&p.Link,
			&p.PreviewImageFileID,
			&p.ImageFileID,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		promos = append(promos, p)
	}

	return promos, rows.Err()
}

func (r *PostgresPromotionRepository) Get(ctx context.Context, id int64) (*promotion.Promotion, error) {
	p := &promotion.Promotion{}
	query := `
        SELECT id, title, description, link, preview_image_file_id, image_file_id, created_at
        FROM promotions WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Link,
		&p.PreviewImageFileID,
		&p.ImageFileID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// LogClick inserts a click row as-is. The promotion id is deliberately not
// checked against the promotions table: analytics is best-effort.
func (r *PostgresPromotionRepository) LogClick(ctx context.Context, promotionID int64, action string, userID *int64) error {
	query := `
        INSERT INTO promotion_clicks (promotion_id, action, user_id, clicked_at)
        VALUES ($1, $2, $3, NOW())`
	_, err := r.db.ExecContext(ctx, query, promotionID, action, userID)
	return err
}

func (r *PostgresPromotionRepository) TopByRedirects(ctx context.Context, limit int) ([]promotion.PromoCount, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT p.id, COUNT(c.id) AS cnt
        FROM promotions p
        LEFT JOIN promotion_clicks c ON c.promotion_id = p.id AND c.action = 'redirect'
        GROUP BY p.id
        ORDER BY cnt DESC, p.id ASC
        LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var top []promotion.PromoCount
	for rows.Next() {
		var pc promotion.PromoCount
		if err := rows.Scan(&pc.ID, &pc.Count); err != nil {
			return nil, err
		}
		top = append(top, pc)
	}

	return top, rows.Err()
}

func (r *PostgresPromotionRepository) RedirectCounts(ctx context.Context) ([]promotion.TitleCount, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT p.title, COUNT(c.id) AS cnt
        FROM promotions p
        LEFT JOIN promotion_clicks c ON c.promotion_id = p.id AND c.action = 'redirect'
        GROUP BY p.id
        ORDER BY cnt DESC, p.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []promotion.TitleCount
	for rows.Next() {
		var tc promotion.TitleCount
		if err := rows.Scan(&tc.Title, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}

	return counts, rows.Err()
}

func (r *PostgresPromotionRepository) CountClicksBetween(ctx context.Context, action string, from, to time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM promotion_clicks WHERE action = $1 AND clicked_at >= $2 AND clicked_at < $3`
	err := r.db.QueryRowContext(ctx, query, action, from, to).Scan(&count)
	return count, err
}
