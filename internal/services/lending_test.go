package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarylab/library-backend/internal/apperr"
	"github.com/librarylab/library-backend/internal/models"
	"github.com/librarylab/library-backend/internal/repository/repotest"
	"github.com/librarylab/library-backend/internal/services"
	"github.com/librarylab/library-backend/internal/worker"
)

const loanPeriod = 14 * 24 * time.Hour

// fixture wires the services against the in-memory store with a controllable
// clock.
type fixture struct {
	store     *repotest.Store
	wp        *worker.Pool
	books     *services.BookService
	borrowers *services.BorrowerService
	loans     *services.LoanService
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: repotest.New(),
		wp:    worker.NewPool(1),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	t.Cleanup(f.wp.Stop)
	clock := func() time.Time { return f.now }
	f.books = services.NewBookService(f.store.Books(), f.store.AuditLogs(), f.wp)
	f.borrowers = services.NewBorrowerService(f.store.Borrowers(), f.store.AuditLogs(), f.wp)
	f.loans = services.NewLoanService(f.store.Loans(), f.store.AuditLogs(), f.wp, loanPeriod, clock)
	return f
}

// flush waits until every audit task queued so far has run. The pool has a
// single worker, so a sentinel task completing means the queue is drained.
func (f *fixture) flush() {
	done := make(chan struct{})
	f.wp.Submit(func() { close(done) })
	<-done
}

func (f *fixture) createBook(t *testing.T, isbn string, copies int) models.Book {
	t.Helper()
	b, err := f.books.Create(context.Background(), "The Go Programming Language", "Donovan & Kernighan", isbn, copies)
	require.NoError(t, err)
	return b
}

func (f *fixture) createBorrower(t *testing.T, email string) models.Borrower {
	t.Helper()
	b, err := f.borrowers.Create(context.Background(), "Alice Smith", email, nil)
	require.NoError(t, err)
	return b
}

func (f *fixture) available(t *testing.T, bookID string) int {
	t.Helper()
	b, err := f.books.Get(context.Background(), bookID)
	require.NoError(t, err)
	return b.AvailableCopies
}

func Test_IssueAndReturn_LastCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)
	borrower := f.createBorrower(t, "alice@example.com")

	loan, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, book.ID))
	assert.Equal(t, f.now, loan.LoanDate)
	assert.Equal(t, f.now.Add(loanPeriod), loan.DueDate)
	assert.Nil(t, loan.ReturnDate)
	assert.Equal(t, book.Title, loan.BookTitle)
	assert.Equal(t, borrower.Name, loan.BorrowerName)

	// no copies left: a second issue must fail without touching state
	_, err = f.loans.Issue(ctx, book.ID, borrower.ID)
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, 0, f.available(t, book.ID))

	require.NoError(t, f.loans.Return(ctx, loan.ID))
	assert.Equal(t, 1, f.available(t, book.ID))

	// returning twice is indistinguishable from an unknown loan
	err = f.loans.Return(ctx, loan.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1, f.available(t, book.ID))
}

func Test_ConcurrentIssue_LastCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)
	borrower := f.createBorrower(t, "alice@example.com")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.loans.Issue(ctx, book.ID, borrower.ID)
		}(i)
	}
	wg.Wait()

	// exactly one attempt may win the last copy
	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperr.ErrInvalidState)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.available(t, book.ID))
}

func Test_Issue_MissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)
	borrower := f.createBorrower(t, "alice@example.com")

	_, err := f.loans.Issue(ctx, "nope", borrower.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.loans.Issue(ctx, book.ID, "nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Equal(t, 1, f.available(t, book.ID))
}

func Test_LoanListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 3)
	borrower := f.createBorrower(t, "alice@example.com")

	first, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)

	f.now = f.now.Add(48 * time.Hour)
	second, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour)
	third, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)
	require.NoError(t, f.loans.Return(ctx, third.ID))

	// nothing due yet
	overdue, err := f.loans.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)

	// jump past both open due dates; the returned loan stays out
	f.now = second.DueDate.Add(time.Hour)
	overdue, err = f.loans.ListOverdue(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, first.ID, overdue[0].ID, "soonest-due first")
	assert.Equal(t, second.ID, overdue[1].ID)
	assert.True(t, overdue[0].IsOverdue)

	all, err := f.loans.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "most recent loan first")
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, first.ID, all[2].ID)
	assert.False(t, all[0].IsOverdue, "returned loan is never overdue")
	assert.True(t, all[1].IsOverdue)
}

func Test_BookUpdate_PreservesBorrowedCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 3)
	borrower := f.createBorrower(t, "alice@example.com")

	_, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)
	_, err = f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.available(t, book.ID))

	// shrinking to the borrowed count leaves zero available
	two := 2
	updated, err := f.books.Update(ctx, book.ID, models.BookUpdate{TotalCopies: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.TotalCopies)
	assert.Equal(t, 0, updated.AvailableCopies)

	// below the borrowed count is rejected and nothing changes
	one := 1
	_, err = f.books.Update(ctx, book.ID, models.BookUpdate{TotalCopies: &one})
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, 0, f.available(t, book.ID))

	// growing frees copies
	five := 5
	updated, err = f.books.Update(ctx, book.ID, models.BookUpdate{TotalCopies: &five})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.AvailableCopies)
}

func Test_BookUpdate_RejectsZeroTotalCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)

	// even with nothing borrowed, a book always has at least one copy
	zero := 0
	_, err := f.books.Update(ctx, book.ID, models.BookUpdate{TotalCopies: &zero})
	require.ErrorIs(t, err, apperr.ErrInvalidState)
	assert.Equal(t, 1, f.available(t, book.ID))
}

func Test_ISBNAndEmailUniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createBook(t, "978-0134190440", 1)
	other := f.createBook(t, "978-0201633610", 1)

	_, err := f.books.Create(ctx, "Duplicate", "Somebody", "978-0134190440", 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	taken := "978-0134190440"
	_, err = f.books.Update(ctx, other.ID, models.BookUpdate{ISBN: &taken})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	f.createBorrower(t, "alice@example.com")
	_, err = f.borrowers.Create(ctx, "Also Alice", "alice@example.com", nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func Test_DeleteGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)
	borrower := f.createBorrower(t, "alice@example.com")

	loan, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.books.Delete(ctx, book.ID), apperr.ErrConflict)
	assert.ErrorIs(t, f.borrowers.Delete(ctx, borrower.ID), apperr.ErrConflict)

	require.NoError(t, f.loans.Return(ctx, loan.ID))

	assert.NoError(t, f.books.Delete(ctx, book.ID))
	assert.NoError(t, f.borrowers.Delete(ctx, borrower.ID))

	assert.ErrorIs(t, f.books.Delete(ctx, book.ID), apperr.ErrNotFound)
}

func Test_MutationsAreAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	book := f.createBook(t, "978-0134190440", 1)
	borrower := f.createBorrower(t, "alice@example.com")
	loan, err := f.loans.Issue(ctx, book.ID, borrower.ID)
	require.NoError(t, err)
	require.NoError(t, f.loans.Return(ctx, loan.ID))

	f.flush()

	entries := f.store.AuditEntries()
	actions := make(map[string]int)
	for _, e := range entries {
		actions[e.EntityType+"/"+e.Action]++
	}
	assert.Equal(t, 1, actions["book/created"])
	assert.Equal(t, 1, actions["borrower/created"])
	assert.Equal(t, 1, actions["loan/issued"])
	assert.Equal(t, 1, actions["loan/returned"])
}
