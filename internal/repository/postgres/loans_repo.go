package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/librarylab/library-backend/internal/apperr"
	"github.com/librarylab/library-backend/internal/models"
)

type loansRepo struct{ pool *pgxpool.Pool }

var dialect = goqu.Dialect("postgres")

func (r *loansRepo) Issue(ctx context.Context, bookID, borrowerID string, loanDate, dueDate time.Time) (models.LoanDetail, error) {
	var out models.LoanDetail
	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var available int
		var bookTitle string
		err := tx.QueryRow(ctx,
			`SELECT available_copies, title FROM books WHERE id=$1 FOR UPDATE`, bookID,
		).Scan(&available, &bookTitle)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("book not found")
		}
		if err != nil {
			return err
		}

		var borrowerName string
		err = tx.QueryRow(ctx, `SELECT name FROM borrowers WHERE id=$1`, borrowerID).Scan(&borrowerName)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("borrower not found")
		}
		if err != nil {
			return err
		}

		if available <= 0 {
			return apperr.InvalidState("no available copies of this book")
		}

		// The guard repeats the availability check so the decrement can
		// never drive the counter negative, even under a concurrent issue.
		tag, err := tx.Exec(ctx,
			`UPDATE books SET available_copies = available_copies - 1, updated_at = now()
			  WHERE id=$1 AND available_copies > 0`, bookID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperr.InvalidState("no available copies of this book")
		}

		var l models.Loan
		err = tx.QueryRow(ctx,
			`INSERT INTO loans(id, book_id, borrower_id, loan_date, due_date)
			 VALUES($1,$2,$3,$4,$5)
			 RETURNING id, book_id, borrower_id, loan_date, due_date, return_date`,
			uuid.NewString(), bookID, borrowerID, loanDate, dueDate,
		).Scan(&l.ID, &l.BookID, &l.BorrowerID, &l.LoanDate, &l.DueDate, &l.ReturnDate)
		if err != nil {
			return err
		}

		out = models.LoanDetail{Loan: l, BookTitle: bookTitle, BorrowerName: borrowerName}
		return nil
	})
	if err != nil {
		return models.LoanDetail{}, err
	}
	return out, nil
}

func (r *loansRepo) Return(ctx context.Context, loanID string, returnedAt time.Time) error {
	return withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var bookID string
		err := tx.QueryRow(ctx,
			`UPDATE loans SET return_date=$2 WHERE id=$1 AND return_date IS NULL RETURNING book_id`,
			loanID, returnedAt,
		).Scan(&bookID)
		if errors.Is(err, pgx.ErrNoRows) {
			// A closed loan and an unknown id look the same to the caller.
			return apperr.NotFound("active loan not found or already returned")
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE books SET available_copies = available_copies + 1, updated_at = now() WHERE id=$1`,
			bookID)
		return err
	})
}

// loanListQuery is the shared join for loan projections.
func loanListQuery() *goqu.SelectDataset {
	return dialect.From(goqu.T("loans").As("l")).
		Join(goqu.T("books").As("b"), goqu.On(goqu.I("l.book_id").Eq(goqu.I("b.id")))).
		Join(goqu.T("borrowers").As("w"), goqu.On(goqu.I("l.borrower_id").Eq(goqu.I("w.id")))).
		Select(
			goqu.I("l.id"), goqu.I("l.book_id"), goqu.I("b.title"),
			goqu.I("l.borrower_id"), goqu.I("w.name"),
			goqu.I("l.loan_date"), goqu.I("l.due_date"), goqu.I("l.return_date"),
		)
}

func (r *loansRepo) List(ctx context.Context, now time.Time) ([]models.LoanDetail, error) {
	ds := loanListQuery().Order(goqu.I("l.loan_date").Desc())
	return r.queryLoans(ctx, ds, now)
}

func (r *loansRepo) ListOverdue(ctx context.Context, now time.Time) ([]models.LoanDetail, error) {
	ds := loanListQuery().
		Where(goqu.I("l.return_date").IsNull(), goqu.I("l.due_date").Lt(now)).
		Order(goqu.I("l.due_date").Asc())
	return r.queryLoans(ctx, ds, now)
}

func (r *loansRepo) queryLoans(ctx context.Context, ds *goqu.SelectDataset, now time.Time) ([]models.LoanDetail, error) {
	sqlStr, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LoanDetail
	for rows.Next() {
		var d models.LoanDetail
		if err := rows.Scan(&d.ID, &d.BookID, &d.BookTitle, &d.BorrowerID, &d.BorrowerName,
			&d.LoanDate, &d.DueDate, &d.ReturnDate); err != nil {
			return nil, err
		}
		d.IsOverdue = d.Overdue(now)
		out = append(out, d)
	}
	return out, rows.Err()
}
