// Package repository defines the persistence contracts the services depend
// on. The postgres subpackage implements them; repotest carries in-memory
// doubles for tests.
package repository

import (
	"context"
	"time"

	"github.com/librarylab/library-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, passwordHash string) (models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
}

type Books interface {
	Create(ctx context.Context, b models.Book) (models.Book, error)
	GetByID(ctx context.Context, id string) (models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	// Update applies the non-nil fields atomically. Changing TotalCopies
	// below the currently-borrowed count fails; on success AvailableCopies
	// is recomputed so the open-loan count is preserved.
	Update(ctx context.Context, id string, upd models.BookUpdate) (models.Book, error)
	// Delete fails while any open loan references the book.
	Delete(ctx context.Context, id string) error
}

type Borrowers interface {
	Create(ctx context.Context, b models.Borrower) (models.Borrower, error)
	GetByID(ctx context.Context, id string) (models.Borrower, error)
	List(ctx context.Context) ([]models.Borrower, error)
	Update(ctx context.Context, id string, upd models.BorrowerUpdate) (models.Borrower, error)
	Delete(ctx context.Context, id string) error
}

type Loans interface {
	// Issue decrements the book's available copies and creates the loan as
	// one atomic unit. Concurrent issues of the last copy must not both
	// succeed.
	Issue(ctx context.Context, bookID, borrowerID string, loanDate, dueDate time.Time) (models.LoanDetail, error)
	// Return closes the open loan with the given id and increments the
	// book's available copies atomically. A closed or unknown loan id is
	// reported identically.
	Return(ctx context.Context, loanID string, returnedAt time.Time) error
	List(ctx context.Context, now time.Time) ([]models.LoanDetail, error)
	ListOverdue(ctx context.Context, now time.Time) ([]models.LoanDetail, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
