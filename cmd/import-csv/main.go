package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookhub/migrations"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func main() {
	var (
		booksIn = flag.String("books", "data/books.csv", "input CSV path for books")
	)
	flag.Parse()

	log := utils.NewLogger("import-csv")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := migrations.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	n, err := importBooks(ctx, db, *booksIn)
	if err != nil {
		log.Fatal().Err(err).Msg("import books failed")
	}

	log.Info().Int("count", n).Str("path", *booksIn).Msg("imported books")
}

func importBooks(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareContext(ctx, `
		INSERT INTO books (id, title, author, description)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title, author) DO UPDATE SET
		  description = excluded.description,
		  updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		if len(row) == 0 {
			continue
		}

		title := valueAt(header, row, "title")
		author := valueAt(header, row, "author")
		if title == "" || author == "" {
			continue
		}

		id := valueAt(header, row, "id")
		if id == "" {
			id = uuid.NewString()
		}

		if _, err := stmt.ExecContext(
			ctx,
			id,
			title,
			author,
			nullString(valueAt(header, row, "description")),
		); err != nil {
			return count, err
		}
		count++
	}

	return count, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, name string) string {
	idx, ok := header[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
