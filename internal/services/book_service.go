package services

import (
	"context"
	"strings"

	"github.com/librarylab/library-backend/internal/models"
	repo "github.com/librarylab/library-backend/internal/repository"
	"github.com/librarylab/library-backend/internal/worker"
)

type BookService struct {
	r     repo.Books
	audit auditor
}

func NewBookService(r repo.Books, logs repo.AuditLogs, wp *worker.Pool) *BookService {
	return &BookService{r: r, audit: auditor{logs: logs, wp: wp}}
}

func (s *BookService) Create(ctx context.Context, title, author, isbn string, totalCopies int) (models.Book, error) {
	b := models.Book{
		Title:       strings.TrimSpace(title),
		Author:      strings.TrimSpace(author),
		ISBN:        strings.TrimSpace(isbn),
		TotalCopies: totalCopies,
	}
	created, err := s.r.Create(ctx, b)
	if err != nil {
		return models.Book{}, err
	}
	s.audit.record("book", created.ID, "created", map[string]any{"isbn": created.ISBN})
	return created, nil
}

func (s *BookService) Get(ctx context.Context, id string) (models.Book, error) {
	return s.r.GetByID(ctx, id)
}

func (s *BookService) List(ctx context.Context) ([]models.Book, error) {
	return s.r.List(ctx)
}

func (s *BookService) Update(ctx context.Context, id string, upd models.BookUpdate) (models.Book, error) {
	b, err := s.r.Update(ctx, id, upd)
	if err != nil {
		return models.Book{}, err
	}
	s.audit.record("book", id, "updated", nil)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.r.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.record("book", id, "deleted", nil)
	return nil
}
