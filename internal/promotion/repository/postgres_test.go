package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promohub/internal/promotion"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestAddReturnsIDAndCreatedAt(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO promotions")).
		WithArgs("Sale", "10% off", "http://x", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), created))

	p := &promotion.Promotion{Title: "Sale", Description: "10% off", Link: "http://x"}
	require.NoError(t, repo.Add(context.Background(), p))

	assert.Equal(t, int64(3), p.ID)
	assert.Equal(t, created, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldUsesMappedColumn(t *testing.T) {
	cases := []struct {
		field  promotion.Field
		column string
	}{
		{promotion.FieldTitle, "title"},
		{promotion.FieldDescription, "description"},
		{promotion.FieldLink, "link"},
		{promotion.FieldPreviewImage, "preview_image_file_id"},
		{promotion.FieldDetailImage, "image_file_id"},
	}

	for _, tc := range cases {
		t.Run(string(tc.field), func(t *testing.T) {
			db, mock := newMock(t)
			repo := NewPostgresPromotionRepository(db)

			mock.ExpectExec(regexp.QuoteMeta("UPDATE promotions SET "+tc.column+" = $1 WHERE id = $2")).
				WithArgs("value", int64(5)).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.UpdateField(context.Background(), 5, tc.field, "value"))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateFieldRefusesUnknownField(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	err := repo.UpdateField(context.Background(), 5, promotion.Field("created_at"), "x")
	assert.Error(t, err)
	// ни одного обращения к базе
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFieldZeroRowsIsNoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	mock.ExpectExec("UPDATE promotions").
		WithArgs("x", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateField(context.Background(), 99, promotion.FieldTitle, "x")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestDeleteCascadesClicksInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM promotion_clicks WHERE promotion_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM promotions WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 5))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingPromotionRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM promotion_clicks").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM promotions").
		WithArgs(int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersNewestFirst(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "description", "link", "preview_image_file_id", "image_file_id", "created_at"}).
		AddRow(int64(2), "New", "d", "l", nil, nil, time.Now()).
		AddRow(int64(1), "Old", "d", "l", "prev", "img", time.Now().Add(-time.Hour))

	mock.ExpectQuery("ORDER BY created_at DESC, id DESC").WillReturnRows(rows)

	promos, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, promos, 2)
	assert.Equal(t, "New", promos[0].Title)
	assert.Nil(t, promos[0].PreviewImageFileID)
	require.NotNil(t, promos[1].PreviewImageFileID)
	assert.Equal(t, "prev", *promos[1].PreviewImageFileID)
}

func TestGetMissingReturnsNoRows(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	mock.ExpectQuery("SELECT id, title").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestLogClickAcceptsDanglingPromotionID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO promotion_clicks")).
		WithArgs(int64(999999), "redirect", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.LogClick(context.Background(), 999999, "redirect", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTopByRedirectsOrdersByCount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "cnt"}).
		AddRow(int64(1), int64(3)).
		AddRow(int64(2), int64(1))
	mock.ExpectQuery("ORDER BY cnt DESC, p.id ASC").
		WithArgs(10).
		WillReturnRows(rows)

	top, err := repo.TopByRedirects(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, promotion.PromoCount{ID: 1, Count: 3}, top[0])
	assert.Equal(t, promotion.PromoCount{ID: 2, Count: 1}, top[1])
}

func TestCountClicksBetween(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPromotionRepository(db)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("redirect", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))

	n, err := repo.CountClicksBetween(context.Background(), "redirect", from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
}
