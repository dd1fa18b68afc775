package services

import (
	"context"
	"strings"

	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
	"github.com/librarylab/library-backend/internal/worker"
)

type BorrowerService struct {
	r     repo.Borrowers
	audit auditor
}

func NewBorrowerService(r repo.Borrowers, logs repo.AuditLogs, wp *worker.Pool) *BorrowerService {
	return &BorrowerService{r: r, audit: auditor{logs: logs, wp: wp}}
}

func (s *BorrowerService) Create(ctx context.Context, name, email string, phone *string) (models.Borrower, error) {
	b := models.Borrower{
		Name:  strings.TrimSpace(name),
		Email: strings.TrimSpace(email),
		Phone: phone,
	}
	created, err := s.r.Create(ctx, b)
	if err != nil {
		return models.Borrower{}, err
	}
	s.audit.record("borrower", created.ID, "created", map[string]any{"email": created.Email})
	return created, nil
}

func (s *BorrowerService) Get(ctx context.Context, id string) (models.Borrower, error) {
	return s.r.GetByID(ctx, id)
}

func (s *BorrowerService) List(ctx context.Context) ([]models.Borrower, error) {
	return s.r.List(ctx)
}

func (s *BorrowerService) Update(ctx context.Context, id string, upd models.BorrowerUpdate) (models.Borrower, error) {
	b, err := s.r.Update(ctx, id, upd)
	if err != nil {
		return models.Borrower{}, err
	}
	s.audit.record("borrower", id, "updated", nil)
	return b, nil
}

func (s *BorrowerService) Delete(ctx context.Context, id string) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record("borrower", id, "deleted", nil)
	return nil
}
