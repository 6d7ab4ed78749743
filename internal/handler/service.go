package handler

import (
	"context"

	"github.com/bookshelf-labs/lending-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go

type LendingService interface {
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
