package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"strconv"
	"time"

	"bookhub/internal/books"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func main() {
	var (
		out = flag.String("out", "data/books_export.csv", "output CSV path for books")
	)
	flag.Parse()

	log := utils.NewLogger("export-csv")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	repo := books.NewRepo(db)
	items, err := repo.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list books failed")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("create output file failed")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"id", "title", "author", "description", "avg_rating", "review_count"}); err != nil {
		log.Fatal().Err(err).Msg("write header failed")
	}

	for _, b := range items {
		rec := []string{
			b.ID,
			b.Title,
			b.Author,
			b.Description,
			strconv.FormatFloat(b.AvgRating, 'f', 2, 64),
			strconv.Itoa(b.ReviewCount),
		}
		if err := w.Write(rec); err != nil {
			log.Fatal().Err(err).Msg("write row failed")
		}
	}

	log.Info().Int("count", len(items)).Str("path", *out).Msg("exported books")
}
