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

type borrowersRepo struct{ pool *pgxpool.Pool }

const borrowerCols = `id, name, email, phone, created_at, updated_at`

func scanBorrower(row pgx.Row) (models.Borrower, error) {
	var b models.Borrower
	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *borrowersRepo) Create(ctx context.Context, b models.Borrower) (models.Borrower, error) {
	created, err := scanBorrower(r.pool.QueryRow(ctx,
		`INSERT INTO borrowers(id, name, email, phone) VALUES($1,$2,$3,$4)
		 RETURNING `+borrowerCols,
		uuid.NewString(), b.Name, b.Email, b.Phone,
	))
	if isUniqueViolation(err) {
		return models.Borrower{}, apperr.Conflict("a borrower with this email already exists")
	}
	return created, err
}

func (r *borrowersRepo) GetByID(ctx context.Context, id string) (models.Borrower, error) {
	b, err := scanBorrower(r.pool.QueryRow(ctx, `SELECT `+borrowerCols+` FROM borrowers WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Borrower{}, apperr.NotFound("borrower not found")
	}
	return b, err
}

func (r *borrowersRepo) List(ctx context.Context) ([]models.Borrower, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+borrowerCols+` FROM borrowers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Borrower
	for rows.Next() {
		b, err := scanBorrower(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *borrowersRepo) Update(ctx context.Context, id string, upd models.BorrowerUpdate) (models.Borrower, error) {
	var out models.Borrower
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		b, err := scanBorrower(tx.QueryRow(ctx, `SELECT `+borrowerCols+` FROM borrowers WHERE id=$1 FOR UPDATE`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("borrower not found")
		}
		if err != nil {
			return err
		}

		if upd.Name != nil {
			b.Name = *upd.Name
		}
		if upd.Email != nil {
			b.Email = *upd.Email
		}
		if upd.Phone != nil {
			b.Phone = upd.Phone
		}

		out, err = scanBorrower(tx.QueryRow(ctx,
			`UPDATE borrowers SET name=$2, email=$3, phone=$4, updated_at=now()
			  WHERE id=$1
			  RETURNING `+borrowerCols,
			b.ID, b.Name, b.Email, b.Phone,
		))
		if isUniqueViolation(err) {
			return apperr.Conflict("another borrower with this email already exists")
		}
		return err
	})
	if err != nil {
		return models.Borrower{}, err
	}
	return out, nil
}

func (r *borrowersRepo) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var open bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM loans WHERE borrower_id=$1 AND return_date IS NULL)`, id,
		).Scan(&open); err != nil {
			return err
		}
		if open {
			return apperr.Conflict("cannot delete borrower while they have open loans")
		}
		tag, err := tx.Exec(ctx, `DELETE FROM borrowers WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound("borrower not found")
		}
		return nil
	})
}
