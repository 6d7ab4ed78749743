package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/errs"
	"github.com/bookshelf-labs/lending-service/internal/model"
)

const bookColumns = "id, title, author, category, status, created_at"

func (r *repository) CreateBook(ctx context.Context, req model.NewBook) (model.Book, error) {
	q, args, err := qb.Insert(booksTableName).
		Columns("title", "author", "category").
		Values(req.Title, req.Author, req.Category).
		Suffix("returning " + bookColumns).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		r.log.Error("CreateBook", zap.String("q", q), zap.Any("args", args))
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) GetBook(ctx context.Context, id int) (model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.NotFound("book")
		}
		return model.Book{}, err
	}
	return book, nil
}

// bookUpdateSet collects only the provided fields, so omitted fields
// keep their stored values.
func bookUpdateSet(req model.UpdateBook) map[string]interface{} {
	set := map[string]interface{}{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Author != nil {
		set["author"] = *req.Author
	}
	if req.Category != nil {
		set["category"] = *req.Category
	}
	if req.Status != nil {
		set["status"] = *req.Status
	}
	return set
}

// UpdateBook merges only the provided fields; nil fields keep their
// stored values.
func (r *repository) UpdateBook(ctx context.Context, id int, req model.UpdateBook) error {
	set := bookUpdateSet(req)
	if len(set) == 0 {
		_, err := r.GetBook(ctx, id)
		return err
	}

	q, args, err := qb.Update(booksTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("UpdateBook", zap.String("q", q), zap.Any("args", args))
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("book")
	}
	return nil
}

// DeleteBook refuses to remove a book with an open borrowing; closed
// history survives via the set-null reference on borrowings.
func (r *repository) DeleteBook(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var bookID int
	if err := tx.GetContext(ctx, &bookID,
		`select id from books where id = $1 for update`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("book")
		}
		return err
	}

	var open bool
	if err := tx.GetContext(ctx, &open,
		`select exists(select 1 from borrowings where book_id = $1 and return_date is null)`, id); err != nil {
		return err
	}
	if open {
		return errs.Conflict("book has an open borrowing")
	}

	if _, err := tx.ExecContext(ctx, `delete from books where id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) ListBooks(ctx context.Context, params model.BookSearchParams) ([]model.Book, error) {
	q, args, err := buildListBooksQuery(params)
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", q), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}
