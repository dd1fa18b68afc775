// Package repotest provides in-memory implementations of the repository
// interfaces for service and handler tests. They mirror the postgres
// implementations' error semantics, including the copy-count guards.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarylab/library-backend/internal/apperr"
	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
)

type Store struct {
	mu        sync.Mutex
	users     map[string]models.User
	books     map[string]models.Book
	borrowers map[string]models.Borrower
	loans     map[string]models.Loan
	audits    []models.AuditLog
}

func New() *Store {
	return &Store{
		users:     map[string]models.User{},
		books:     map[string]models.Book{},
		borrowers: map[string]models.Borrower{},
		loans:     map[string]models.Loan{},
	}
}

func (s *Store) Users() repo.Users         { return usersRepo{s} }
func (s *Store) Books() repo.Books         { return booksRepo{s} }
func (s *Store) Borrowers() repo.Borrowers { return borrowersRepo{s} }
func (s *Store) Loans() repo.Loans         { return loansRepo{s} }
func (s *Store) AuditLogs() repo.AuditLogs { return auditLogsRepo{s} }

func (s *Store) AuditEntries() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditLog, len(s.audits))
	copy(out, s.audits)
	return out
}

// ---------- users ----------

type usersRepo struct{ s *Store }

func (r usersRepo) Create(_ context.Context, username, hash string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return models.User{}, apperr.Conflict("username already exists")
		}
	}
	u := models.User{ID: uuid.NewString(), Username: username, PasswordHash: hash, CreatedAt: time.Now()}
	r.s.users[u.ID] = u
	return u, nil
}

func (r usersRepo) GetByUsername(_ context.Context, username string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user not found")
}

// ---------- books ----------

type booksRepo struct{ s *Store }

func (r booksRepo) Create(_ context.Context, b models.Book) (models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.books {
		if other.ISBN == b.ISBN {
			return models.Book{}, apperr.Conflict("a book with this ISBN already exists")
		}
	}
	now := time.Now()
	b.ID = uuid.NewString()
	b.AvailableCopies = b.TotalCopies
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.books[b.ID] = b
	return b, nil
}

func (r booksRepo) GetByID(_ context.Context, id string) (models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return models.Book{}, apperr.NotFound("book not found")
	}
	return b, nil
}

func (r booksRepo) List(_ context.Context) ([]models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Book, 0, len(r.s.books))
	for _, b := range r.s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r booksRepo) Update(_ context.Context, id string, upd models.BookUpdate) (models.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[id]
	if !ok {
		return models.Book{}, apperr.NotFound("book not found")
	}
	borrowed := b.BorrowedCopies()
	if upd.ISBN != nil {
		for otherID, other := range r.s.books {
			if otherID != id && other.ISBN == *upd.ISBN {
				return models.Book{}, apperr.Conflict("another book with this ISBN already exists")
			}
		}
		b.ISBN = *upd.ISBN
	}
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.TotalCopies != nil {
		if *upd.TotalCopies < 1 {
			return models.Book{}, apperr.InvalidState("total copies must be at least 1")
		}
		if *upd.TotalCopies < borrowed {
			return models.Book{}, apperr.InvalidState("cannot reduce total copies below currently borrowed copies")
		}
		b.TotalCopies = *upd.TotalCopies
		b.AvailableCopies = b.TotalCopies - borrowed
	}
	b.UpdatedAt = time.Now()
	r.s.books[id] = b
	return b, nil
}

func (r booksRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.books[id]; !ok {
		return apperr.NotFound("book not found")
	}
	for _, l := range r.s.loans {
		if l.BookID == id && l.ReturnDate == nil {
			return apperr.Conflict("cannot delete book while it has open loans")
		}
	}
	for loanID, l := range r.s.loans {
		if l.BookID == id {
			delete(r.s.loans, loanID)
		}
	}
	delete(r.s.books, id)
	return nil
}

// ---------- borrowers ----------

type borrowersRepo struct{ s *Store }

func (r borrowersRepo) Create(_ context.Context, b models.Borrower) (models.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.borrowers {
		if other.Email == b.Email {
			return models.Borrower{}, apperr.Conflict("a borrower with this email already exists")
		}
	}
	now := time.Now()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.borrowers[b.ID] = b
	return b, nil
}

func (r borrowersRepo) GetByID(_ context.Context, id string) (models.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrowers[id]
	if !ok {
		return models.Borrower{}, apperr.NotFound("borrower not found")
	}
	return b, nil
}

func (r borrowersRepo) List(_ context.Context) ([]models.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Borrower, 0, len(r.s.borrowers))
	for _, b := range r.s.borrowers {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r borrowersRepo) Update(_ context.Context, id string, upd models.BorrowerUpdate) (models.Borrower, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.borrowers[id]
	if !ok {
		return models.Borrower{}, apperr.NotFound("borrower not found")
	}
	if upd.Email != nil {
		for otherID, other := range r.s.borrowers {
			if otherID != id && other.Email == *upd.Email {
				return models.Borrower{}, apperr.Conflict("another borrower with this email already exists")
			}
		}
		b.Email = *upd.Email
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Phone != nil {
		b.Phone = upd.Phone
	}
	b.UpdatedAt = time.Now()
	r.s.borrowers[id] = b
	return b, nil
}

func (r borrowersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.borrowers[id]; !ok {
		return apperr.NotFound("borrower not found")
	}
	for _, l := range r.s.loans {
		if l.BorrowerID == id && l.ReturnDate == nil {
			return apperr.Conflict("cannot delete borrower while they have open loans")
		}
	}
	for loanID, l := range r.s.loans {
		if l.BorrowerID == id {
			delete(r.s.loans, loanID)
		}
	}
	delete(r.s.borrowers, id)
	return nil
}

// ---------- loans ----------

type loansRepo struct{ s *Store }

func (r loansRepo) Issue(_ context.Context, bookID, borrowerID string, loanDate, dueDate time.Time) (models.LoanDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.books[bookID]
	if !ok {
		return models.LoanDetail{}, apperr.NotFound("book not found")
	}
	w, ok := r.s.borrowers[borrowerID]
	if !ok {
		return models.LoanDetail{}, apperr.NotFound("borrower not found")
	}
	if b.AvailableCopies <= 0 {
		return models.LoanDetail{}, apperr.InvalidState("no available copies of this book")
	}
	b.AvailableCopies--
	r.s.books[bookID] = b

	l := models.Loan{
		ID:         uuid.NewString(),
		BookID:     bookID,
		BorrowerID: borrowerID,
		LoanDate:   loanDate,
		DueDate:    dueDate,
	}
	r.s.loans[l.ID] = l
	return models.LoanDetail{Loan: l, BookTitle: b.Title, BorrowerName: w.Name}, nil
}

func (r loansRepo) Return(_ context.Context, loanID string, returnedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[loanID]
	if !ok || l.ReturnDate != nil {
		return apperr.NotFound("active loan not found or already returned")
	}
	t := returnedAt
	l.ReturnDate = &t
	r.s.loans[loanID] = l

	b := r.s.books[l.BookID]
	b.AvailableCopies++
	r.s.books[l.BookID] = b
	return nil
}

func (r loansRepo) List(_ context.Context, now time.Time) ([]models.LoanDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.details(now, func(models.Loan) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].LoanDate.After(out[j].LoanDate) })
	return out, nil
}

func (r loansRepo) ListOverdue(_ context.Context, now time.Time) ([]models.LoanDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.details(now, func(l models.Loan) bool {
		return l.ReturnDate == nil && l.DueDate.Before(now)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r loansRepo) details(now time.Time, keep func(models.Loan) bool) []models.LoanDetail {
	var out []models.LoanDetail
	for _, l := range r.s.loans {
		if !keep(l) {
			continue
		}
		out = append(out, models.LoanDetail{
			Loan:         l,
			BookTitle:    r.s.books[l.BookID].Title,
			BorrowerName: r.s.borrowers[l.BorrowerID].Name,
			IsOverdue:    l.Overdue(now),
		})
	}
	return out
}

// ---------- audit ----------

type auditLogsRepo struct{ s *Store }

func (r auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, l)
	return nil
}
