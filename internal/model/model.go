package model

import (
	"strings"
	"time"
)

// BookStatus is the stored lifecycle state of a book.
type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusBorrowed  BookStatus = "borrowed"

	// BookStatusAll is a search sentinel only, never stored.
	// An unset filter and "all" select the same result set.
	BookStatusAll BookStatus = "all"
)

// ParseBookStatusFilter decodes a status query parameter. Unknown values
// fall back to "no filter" rather than being rejected.
func ParseBookStatusFilter(s string) BookStatus {
	switch BookStatus(strings.ToLower(s)) {
	case BookStatusAvailable:
		return BookStatusAvailable
	case BookStatusBorrowed:
		return BookStatusBorrowed
	case BookStatusAll:
		return BookStatusAll
	default:
		return ""
	}
}

type Book struct {
	ID        int        `json:"id" db:"id"`
	Title     string     `json:"title" db:"title"`
	Author    string     `json:"author" db:"author"`
	Category  *string    `json:"category" db:"category"`
	Status    BookStatus `json:"status" db:"status"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}

type NewBook struct {
	Title    string  `json:"title" validate:"required"`
	Author   string  `json:"author" validate:"required"`
	Category *string `json:"category"`
}

// UpdateBook carries a field-level merge: nil fields keep their stored value.
type UpdateBook struct {
	Title    *string     `json:"title"`
	Author   *string     `json:"author"`
	Category *string     `json:"category"`
	Status   *BookStatus `json:"status" validate:"omitempty,oneof=available borrowed"`
}

type Member struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type NewMember struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone"`
}

type UpdateMember struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}

// Borrowing is one lending record. ReturnDate == nil means the loan is open.
// Book and member references are nullable: deleting a catalog row keeps the
// closed history with the reference set to null.
type Borrowing struct {
	ID         int        `json:"id" db:"id"`
	BookID     *int       `json:"bookId" db:"book_id"`
	MemberID   *int       `json:"memberId" db:"member_id"`
	BorrowDate time.Time  `json:"borrowDate" db:"borrow_date"`
	ReturnDate *time.Time `json:"returnDate" db:"return_date"`
}

// BorrowStatus is the derived state of a lending record in the
// borrowed_books projection, never stored on the record itself.
type BorrowStatus string

const (
	BorrowStatusActive   BorrowStatus = "active"
	BorrowStatusReturned BorrowStatus = "returned"
	BorrowStatusAll      BorrowStatus = "all"
)

func ParseBorrowStatusFilter(s string) BorrowStatus {
	switch BorrowStatus(strings.ToLower(s)) {
	case BorrowStatusActive:
		return BorrowStatusActive
	case BorrowStatusReturned:
		return BorrowStatusReturned
	default:
		return ""
	}
}

// BorrowedBook is the read-side join of a borrowing with its book and member.
type BorrowedBook struct {
	ID         int          `json:"id" db:"id"`
	Title      string       `json:"title" db:"title"`
	Author     string       `json:"author" db:"author"`
	Borrower   string       `json:"borrower" db:"borrower"`
	BorrowerID int          `json:"borrowerId" db:"borrower_id"`
	BorrowDate time.Time    `json:"borrowDate" db:"borrow_date"`
	ReturnDate *time.Time   `json:"returnDate" db:"return_date"`
	Status     BorrowStatus `json:"status" db:"status"`
}

type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// ParseOrder defaults to ascending on absent or unrecognized input.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, "desc") {
		return OrderDesc
	}
	return OrderAsc
}

// Page is a 1-based page request. Page 0 or absent means the first page.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

const defaultPageSize = 10

func (p Page) PageSize() uint64 {
	if p.Limit <= 0 {
		return defaultPageSize
	}
	return uint64(p.Limit)
}

func (p Page) Offset() uint64 {
	if p.Page <= 1 {
		return 0
	}
	return uint64(p.Page-1) * p.PageSize()
}

type BookSearchParams struct {
	Title    string
	Author   string
	Category string
	Status   BookStatus
	OrderBy  string
	Order    Order
	Page     Page
}

type MemberSearchParams struct {
	Name    string
	Email   string
	Phone   string
	OrderBy string
	Order   Order
	Page    Page
}

// BorrowSearchParams scopes the borrowed-books projection to one member
// when MemberID is set, or to all members otherwise.
type BorrowSearchParams struct {
	MemberID *int
	Title    string
	Author   string
	Borrower string
	Status   BorrowStatus
	OrderBy  string
	Order    Order
	Page     Page
}

type LendingAction string

const (
	LendingActionBorrow LendingAction = "BORROW"
	LendingActionReturn LendingAction = "RETURN"
)

// LendingEvent is published after a successful lending transition.
type LendingEvent struct {
	EventUid    string        `json:"eventUid"`
	Action      LendingAction `json:"action"`
	BorrowingID int           `json:"borrowingId"`
	BookID      *int          `json:"bookId"`
	MemberID    *int          `json:"memberId"`
	OccurredAt  time.Time     `json:"occurredAt"`
}
