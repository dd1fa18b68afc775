package models

import "time"

// Book invariant: 0 <= AvailableCopies <= TotalCopies, and AvailableCopies
// equals TotalCopies minus the number of open loans on the book.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	TotalCopies     int       `json:"total_copies"`
	AvailableCopies int       `json:"available_copies"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BorrowedCopies is the number of copies currently out on open loans.
func (b Book) BorrowedCopies() int { return b.TotalCopies - b.AvailableCopies }

// BookUpdate is a partial update; nil fields are left unchanged.
type BookUpdate struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	ISBN        *string `json:"isbn"`
	TotalCopies *int    `json:"total_copies"`
}
