package reviews

import (
	"context"
	"database/sql"
	"fmt"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Create(ctx context.Context, bookID, userID, content string, rating int) (*models.Review, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO reviews (book_id, user_id, content, rating)
		VALUES (?, ?, ?, ?)
	`, bookID, userID, content, rating)
	if err != nil {
		return nil, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, book_id, user_id, content, rating, created_at, updated_at
		FROM reviews
		WHERE id = ?
	`, id)

	var review models.Review
	if err := row.Scan(
		&review.ID, &review.BookID, &review.UserID, &review.Content, &review.Rating,
		&review.CreatedAt, &review.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

// ListByBook returns all reviews for a book. An unknown book id is not an
// error; it just yields an empty list.
func (r *Repo) ListByBook(ctx context.Context, bookID string) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, book_id, user_id, content, rating, created_at, updated_at
		FROM reviews
		WHERE book_id = ?
		ORDER BY created_at DESC
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID, &review.BookID, &review.UserID, &review.Content, &review.Rating,
			&review.CreatedAt, &review.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Update writes new content and rating. book_id and user_id never change;
// the ownership check happens before this is called.
func (r *Repo) Update(ctx context.Context, id int64, content string, rating int) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE reviews
		SET content = ?, rating = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, content, rating, id)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update review: not found")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}
