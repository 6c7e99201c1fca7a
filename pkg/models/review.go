package models

import "time"

// Review is bound to exactly one book and one author; both references are
// immutable after creation.
type Review struct {
	ID        int64     `json:"id"`
	BookID    string    `json:"book_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
