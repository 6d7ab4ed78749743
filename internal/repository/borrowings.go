package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/errs"
	"github.com/bookshelf-labs/lending-service/internal/model"
)

const borrowingColumns = "id, book_id, member_id, borrow_date, return_date"

// Borrow moves a book from available to borrowed and opens a lending record,
// both inside one transaction. The book row is locked for the duration and a
// partial unique index on open borrowings guarantees at most one open record
// per book, so of two concurrent calls exactly one commits.
func (r *repository) Borrow(ctx context.Context, bookID, memberID int) (model.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Borrowing{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var mID int
	if err := tx.GetContext(ctx, &mID,
		`select id from members where id = $1`, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.NotFound("member")
		}
		return model.Borrowing{}, err
	}

	var status model.BookStatus
	if err := tx.GetContext(ctx, &status,
		`select status from books where id = $1 for update`, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.NotFound("book")
		}
		return model.Borrowing{}, err
	}
	if status != model.BookStatusAvailable {
		return model.Borrowing{}, errs.Conflict("book is not available")
	}

	var open bool
	if err := tx.GetContext(ctx, &open,
		`select exists(select 1 from borrowings where book_id = $1 and member_id = $2 and return_date is null)`,
		bookID, memberID); err != nil {
		return model.Borrowing{}, err
	}
	if open {
		return model.Borrowing{}, errs.Conflict("book is already borrowed by this member")
	}

	q, args, err := qb.Insert(borrowingsTableName).
		Columns("book_id", "member_id", "borrow_date").
		Values(bookID, memberID, sq.Expr("now()")).
		Suffix("returning " + borrowingColumns).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}

	var bw model.Borrowing
	if err := tx.GetContext(ctx, &bw, q, args...); err != nil {
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return model.Borrowing{}, errs.Conflict("book is not available")
		}
		r.log.Error("Borrow", zap.String("q", q), zap.Any("args", args))
		return model.Borrowing{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`update books set status = $1 where id = $2`, model.BookStatusBorrowed, bookID); err != nil {
		return model.Borrowing{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Borrowing{}, err
	}
	return bw, nil
}

// Return closes the open lending record of a borrowed book and flips the
// book back to available, atomically.
func (r *repository) Return(ctx context.Context, bookID int) (model.Borrowing, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Borrowing{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var status model.BookStatus
	if err := tx.GetContext(ctx, &status,
		`select status from books where id = $1 for update`, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.NotFound("book")
		}
		return model.Borrowing{}, err
	}
	if status != model.BookStatusBorrowed {
		return model.Borrowing{}, errs.Conflict("book is not borrowed")
	}

	// A borrowed book without an open record means the store lost sync
	// between status and borrowings.
	var bw model.Borrowing
	if err := tx.GetContext(ctx, &bw,
		`update borrowings set return_date = now()
		 where book_id = $1 and return_date is null
		 returning `+borrowingColumns, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.NotFound("open borrowing")
		}
		return model.Borrowing{}, err
	}

	if _, err := tx.ExecContext(ctx,
		`update books set status = $1 where id = $2`, model.BookStatusAvailable, bookID); err != nil {
		return model.Borrowing{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Borrowing{}, err
	}
	return bw, nil
}

// DeleteBorrowing is an administrative correction: it removes the record
// outright and resets the referenced book to available regardless of the
// record's open or closed state. It can mask data errors rather than fix
// them, so it is not part of the normal lending lifecycle.
func (r *repository) DeleteBorrowing(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var bw model.Borrowing
	if err := tx.GetContext(ctx, &bw,
		`select `+borrowingColumns+` from borrowings where id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("borrowing")
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, `delete from borrowings where id = $1`, id); err != nil {
		return err
	}

	if bw.BookID != nil {
		if _, err := tx.ExecContext(ctx,
			`update books set status = $1 where id = $2`, model.BookStatusAvailable, *bw.BookID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) ListBorrowed(ctx context.Context, params model.BorrowSearchParams) ([]model.BorrowedBook, error) {
	q, args, err := buildListBorrowedQuery(params)
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBorrowed", zap.String("query", q), zap.Any("args", args))

	items := make([]model.BorrowedBook, 0)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}
