package books

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// roundRating rounds a derived average to 2 decimal places. The average is
// never stored; every read recomputes it from the reviews table.
func roundRating(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Repo) Create(ctx context.Context, b models.Book) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO books (id, title, author, description)
		VALUES (?, ?, ?, ?)
	`, b.ID, b.Title, b.Author, nullString(b.Description))
	if err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

// FindByTitleAuthor backs the advisory duplicate check. The unique index on
// (title, author) is what holds under concurrent creates.
func (r *Repo) FindByTitleAuthor(ctx context.Context, title, author string) (*models.Book, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, author, description, created_at, updated_at
		FROM books
		WHERE title = ? AND author = ?
	`, title, author)

	b, err := scanBook(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find by title/author: %w", err)
	}
	return b, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.BookWithRating, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT b.id, b.title, b.author, b.description, b.created_at, b.updated_at,
		       COUNT(r.id), COALESCE(AVG(r.rating), 0)
		FROM books b
		LEFT JOIN reviews r ON r.book_id = b.id
		WHERE b.id = ?
		GROUP BY b.id
	`, id)

	var (
		bwr         models.BookWithRating
		description sql.NullString
		avg         float64
	)
	if err := row.Scan(
		&bwr.ID, &bwr.Title, &bwr.Author, &description, &bwr.CreatedAt, &bwr.UpdatedAt,
		&bwr.ReviewCount, &avg,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	bwr.Description = description.String
	bwr.AvgRating = roundRating(avg)
	return &bwr, nil
}

func (r *Repo) List(ctx context.Context) ([]models.BookWithRating, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT b.id, b.title, b.author, b.description, b.created_at, b.updated_at,
		       COUNT(r.id), COALESCE(AVG(r.rating), 0)
		FROM books b
		LEFT JOIN reviews r ON r.book_id = b.id
		GROUP BY b.id
		ORDER BY b.title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookWithRating, 0)
	for rows.Next() {
		var (
			bwr         models.BookWithRating
			description sql.NullString
			avg         float64
		)
		if err := rows.Scan(
			&bwr.ID, &bwr.Title, &bwr.Author, &description, &bwr.CreatedAt, &bwr.UpdatedAt,
			&bwr.ReviewCount, &avg,
		); err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}

		bwr.Description = description.String
		bwr.AvgRating = roundRating(avg)
		out = append(out, bwr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) Update(ctx context.Context, b models.Book) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, b.Title, b.Author, nullString(b.Description), b.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update book rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update book: not found")
	}
	return nil
}

// Delete removes the book. Its reviews go with it via the FK cascade.
func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM books
		WHERE id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM books WHERE id = ?
	`, id)

	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("book exists: %w", err)
	}
	return n > 0, nil
}

func scanBook(row *sql.Row) (*models.Book, error) {
	var (
		b           models.Book
		description sql.NullString
	)
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &description, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Description = description.String
	return &b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
