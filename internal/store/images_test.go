package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dteller/pixelforge/internal/domain"
)

func testImage() *domain.Image {
	return &domain.Image{
		Title:     "Sunset",
		Kind:      domain.KindRestore,
		PublicID:  "pixelforge/sunset",
		SecureURL: "https://cdn/sunset.png",
		OwnerID:   3,
	}
}

func TestCreateImage_DebitsFeeWithInsert(t *testing.T) {
	s, mock := newStoreWithMock(t)
	now := time.Now()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(3), int64(-1)).
		WillReturnRows(pgxmock.NewRows([]string{"credit_balance"}).AddRow(int64(9)))
	mock.ExpectQuery(`INSERT INTO images`).
		WithArgs("Sunset", domain.KindRestore, "pixelforge/sunset", "https://cdn/sunset.png",
			int32(0), int32(0), nil, "", "", "", "", int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	mock.ExpectCommit()

	img, err := s.CreateImage(context.Background(), testImage(), domain.CreditFee)
	require.NoError(t, err)
	assert.Equal(t, int64(11), img.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateImage_InsufficientCreditsRollsBack(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	mock.ExpectQuery(`UPDATE users`).
		WithArgs(int64(3), int64(-1)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	_, err := s.CreateImage(context.Background(), testImage(), domain.CreditFee)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountImages_SameFilterAsList(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM images WHERE owner_id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(23)))

	count, err := s.CountImages(context.Background(), ImageFilter{OwnerID: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(23), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListImages_PublicIDFilter(t *testing.T) {
	s, mock := newStoreWithMock(t)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "title", "kind", "public_id", "secure_url", "width", "height", "config",
		"transformation_url", "aspect_ratio", "color", "prompt", "owner_id", "created_at", "updated_at",
	}).
		AddRow(int64(2), "B", domain.KindRestore, "p2", "https://cdn/p2", int32(0), int32(0), []byte(nil), "", "", "", "", int64(1), now, now).
		AddRow(int64(1), "A", domain.KindFill, "p1", "https://cdn/p1", int32(0), int32(0), []byte(`{"kind":"fill","fill":{"aspect_ratio":"1:1"}}`), "", "1:1", "", "", int64(1), now, now)

	mock.ExpectQuery(`SELECT .+ FROM images WHERE public_id = ANY\(\$1\) ORDER BY updated_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs([]string{"p1", "p2"}, int64(9), int64(0)).
		WillReturnRows(rows)

	items, err := s.ListImages(context.Background(), ImageFilter{PublicIDs: []string{"p1", "p2"}}, 9, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	require.NotNil(t, items[1].Config)
	assert.Equal(t, "1:1", items[1].Config.Fill.AspectRatio)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteImage_NotFound(t *testing.T) {
	s, mock := newStoreWithMock(t)

	mock.ExpectExec(`DELETE FROM images`).
		WithArgs(int64(42)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteImage(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
