package services

import (
	"context"
	"time"

	"github.com/librarylab/library-backend/internal/metrics"
	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
	"github.com/librarylab/library-backend/internal/worker"
)

// LoanService owns the lending policy: it stamps loan and due dates from the
// injected clock and projects overdue status at read time.
type LoanService struct {
	r      repo.Loans
	audit  auditor
	period time.Duration
	now    func() time.Time
}

// NewLoanService takes the clock explicitly so overdue computation stays a
// pure function of (returnDate, dueDate, now).
func NewLoanService(r repo.Loans, logs repo.AuditLogs, wp *worker.Pool, period time.Duration, now func() time.Time) *LoanService {
	return &LoanService{r: r, audit: auditor{logs: logs, wp: wp}, period: period, now: now}
}

func (s *LoanService) Issue(ctx context.Context, bookID, borrowerID string) (models.LoanDetail, error) {
	loanDate := s.now()
	d, err := s.r.Issue(ctx, bookID, borrowerID, loanDate, loanDate.Add(s.period))
	if err != nil {
		metrics.LendingFailures.Inc()
		return models.LoanDetail{}, err
	}
	metrics.LoansIssued.Inc()
	s.audit.record("loan", d.ID, "issued", map[string]any{"book_id": bookID, "borrower_id": borrowerID})
	return d, nil
}

func (s *LoanService) Return(ctx context.Context, loanID string) error {
	if err := s.r.Return(ctx, loanID, s.now()); err != nil {
		metrics.LendingFailures.Inc()
		return err
	}
	metrics.LoansReturned.Inc()
	s.audit.record("loan", loanID, "returned", nil)
	return nil
}

// List returns all loans, most recent first.
func (s *LoanService) List(ctx context.Context) ([]models.LoanDetail, error) {
	return s.r.List(ctx, s.now())
}

// ListOverdue returns open past-due loans, soonest-due first.
func (s *LoanService) ListOverdue(ctx context.Context) ([]models.LoanDetail, error) {
	return s.r.ListOverdue(ctx, s.now())
}
