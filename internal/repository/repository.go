package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/model"
)

type Repository interface {
	CreateBook(ctx context.Context, req model.NewBook) (model.Book, error)
	GetBook(ctx context.Context, id int) (model.Book, error)
	UpdateBook(ctx context.Context, id int, req model.UpdateBook) error
	DeleteBook(ctx context.Context, id int) error
	ListBooks(ctx context.Context, params model.BookSearchParams) ([]model.Book, error)

	CreateMember(ctx context.Context, req model.NewMember) (model.Member, error)
	GetMember(ctx context.Context, id int) (model.Member, error)
	UpdateMember(ctx context.Context, id int, req model.UpdateMember) error
	DeleteMember(ctx context.Context, id int) error
	ListMembers(ctx context.Context, params model.MemberSearchParams) ([]model.Member, error)

	Borrow(ctx context.Context, bookID, memberID int) (model.Borrowing, error)
	Return(ctx context.Context, bookID int) (model.Borrowing, error)
	DeleteBorrowing(ctx context.Context, id int) error
	ListBorrowed(ctx context.Context, params model.BorrowSearchParams) ([]model.BorrowedBook, error)

	Ping(ctx context.Context) error
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName        = `books`
	membersTableName      = `members`
	borrowingsTableName   = `borrowings`
	borrowedBooksViewName = `borrowed_books`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func isPgErrCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
