package models

import "time"

// Loan references Book and Borrower by id only. A loan with a nil ReturnDate
// is open; setting ReturnDate closes it and that transition is one-way.
type Loan struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	BorrowerID string     `json:"borrower_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

// Overdue reports whether the loan is open and past due at the given time.
// It takes the clock as a parameter so callers decide what "now" is; the
// value is never persisted.
func (l Loan) Overdue(now time.Time) bool {
	return l.ReturnDate == nil && now.After(l.DueDate)
}

// LoanDetail is the read-side projection of a loan enriched with the book
// title and borrower name.
type LoanDetail struct {
	Loan
	BookTitle    string `json:"book_title"`
	BorrowerName string `json:"borrower_name"`
	IsOverdue    bool   `json:"is_overdue"`
}
