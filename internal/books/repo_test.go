package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookRatingColumns = []string{
	"id", "title", "author", "description", "created_at", "updated_at",
	"review_count", "avg_rating",
}

func newMockRepo(t *testing.T) (*Repo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepo(db), mock
}

func TestRoundRating(t *testing.T) {
	assert.Equal(t, 0.0, roundRating(0))
	assert.Equal(t, 4.5, roundRating(4.5))
	assert.Equal(t, 4.33, roundRating(13.0/3.0))
	assert.Equal(t, 3.67, roundRating(11.0/3.0))
}

func TestGetByID_NoReviews(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT b.id, b.title, b.author").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(bookRatingColumns).
			AddRow("b1", "Dune", "Frank Herbert", nil, now, now, 0, 0.0))

	b, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, b)

	// zero reviews derive to exactly 0, not an error
	assert.Equal(t, 0.0, b.AvgRating)
	assert.Equal(t, 0, b.ReviewCount)
}

func TestGetByID_AverageRounded(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT b.id, b.title, b.author").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows(bookRatingColumns).
			AddRow("b1", "Dune", "Frank Herbert", "classic", now, now, 2, 4.5))

	b, err := repo.GetByID(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, b)

	// ratings [4,5] derive to 4.50
	assert.Equal(t, 4.5, b.AvgRating)
	assert.Equal(t, 2, b.ReviewCount)
	assert.Equal(t, "classic", b.Description)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT b.id, b.title, b.author").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	b, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestList_DerivedRatings(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery("SELECT b.id, b.title, b.author").
		WillReturnRows(sqlmock.NewRows(bookRatingColumns).
			AddRow("b1", "Dune", "Frank Herbert", nil, now, now, 3, 13.0/3.0).
			AddRow("b2", "Emma", "Jane Austen", nil, now, now, 0, 0.0))

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, 4.33, items[0].AvgRating)
	assert.Equal(t, 0.0, items[1].AvgRating)
}

func TestExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.Exists(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err = repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM books").
		WithArgs("b1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), "b1")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectExec("DELETE FROM books").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.Delete(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
