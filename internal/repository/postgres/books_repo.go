package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarylab/library-backend/internal/apperr"
	"github.com/librarylab/library-backend/internal/models"
)

type booksRepo struct{ pool *pgxpool.Pool }

const bookCols = `id, title, author, isbn, total_copies, available_copies, created_at, updated_at`

func scanBook(row pgx.Row) (models.Book, error) {
	var b models.Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *booksRepo) Create(ctx context.Context, b models.Book) (models.Book, error) {
	// All copies of a new book start available.
	created, err := scanBook(r.pool.QueryRow(ctx,
		`INSERT INTO books(id, title, author, isbn, total_copies, available_copies)
		 VALUES($1,$2,$3,$4,$5,$5)
		 RETURNING `+bookCols,
		uuid.NewString(), b.Title, b.Author, b.ISBN, b.TotalCopies,
	))
	if isUniqueViolation(err) {
		return models.Book{}, apperr.Conflict("a book with this ISBN already exists")
	}
	return created, err
}

func (r *booksRepo) GetByID(ctx context.Context, id string) (models.Book, error) {
	b, err := scanBook(r.pool.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Book{}, apperr.NotFound("book not found")
	}
	return b, err
}

func (r *booksRepo) List(ctx context.Context) ([]models.Book, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookCols+` FROM books ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *booksRepo) Update(ctx context.Context, id string, upd models.BookUpdate) (models.Book, error) {
	var out models.Book
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		b, err := scanBook(tx.QueryRow(ctx, `SELECT `+bookCols+` FROM books WHERE id=$1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("book not found")
		}
		if err != nil {
			return err
		}

		borrowed := b.BorrowedCopies()
		if upd.Title != nil {
			b.Title = *upd.Title
		}
		if upd.Author != nil {
			b.Author = *upd.Author
		}
		if upd.ISBN != nil {
			b.ISBN = *upd.ISBN
		}
		if upd.TotalCopies != nil {
			if *upd.TotalCopies < 1 {
				return apperr.InvalidState("total copies must be at least 1")
			}
			if *upd.TotalCopies < borrowed {
				return apperr.InvalidState("cannot reduce total copies below currently borrowed copies")
			}
			b.TotalCopies = *upd.TotalCopies
			b.AvailableCopies = b.TotalCopies - borrowed
		}

		out, err = scanBook(tx.QueryRow(ctx,
			`UPDATE books
			    SET title=$2, author=$3, isbn=$4, total_copies=$5, available_copies=$6, updated_at=now()
			  WHERE id=$1
			  RETURNING `+bookCols,
			b.ID, b.Title, b.Author, b.ISBN, b.TotalCopies, b.AvailableCopies,
		))
		if isUniqueViolation(err) {
			return apperr.Conflict("another book with this ISBN already exists")
		}
		return err
	})
	if err != nil {
		return models.Book{}, err
	}
	return out, nil
}

func (r *booksRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var open bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM loans WHERE book_id=$1 AND return_date IS NULL)`, id,
		).Scan(&open); err != nil {
			return err
		}
		if open {
			return apperr.Conflict("cannot delete book while it has open loans")
		}
		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("book not found")
		}
		return nil
	})
}
