package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/librarylab/library-backend/internal/models"
)

func Test_Loan_Overdue(t *testing.T) {
	due := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	returned := due.Add(-time.Hour)

	tests := []struct {
		name string
		loan models.Loan
		now  time.Time
		want bool
	}{
		{
			name: "open_loan_just_before_due_date",
			loan: models.Loan{DueDate: due},
			now:  due.Add(-time.Second),
			want: false,
		},
		{
			name: "open_loan_exactly_at_due_date",
			loan: models.Loan{DueDate: due},
			now:  due,
			want: false,
		},
		{
			name: "open_loan_just_after_due_date",
			loan: models.Loan{DueDate: due},
			now:  due.Add(time.Second),
			want: true,
		},
		{
			name: "closed_loan_after_due_date",
			loan: models.Loan{DueDate: due, ReturnDate: &returned},
			now:  due.Add(24 * time.Hour),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.loan.Overdue(tc.now))
		})
	}
}

func Test_Book_BorrowedCopies(t *testing.T) {
	b := models.Book{TotalCopies: 5, AvailableCopies: 2}
	assert.Equal(t, 3, b.BorrowedCopies())
}
