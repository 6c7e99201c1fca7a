package models

import "time"

type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookWithRating is the read shape for book endpoints. AvgRating is derived
// from the book's reviews at query time and never persisted; it is 0 when the
// book has no reviews.
type BookWithRating struct {
	Book
	AvgRating   float64 `json:"avg_rating"`
	ReviewCount int     `json:"review_count"`
}
