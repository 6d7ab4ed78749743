package repository

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/bookshelf-labs/lending-service/internal/model"
)

// Sort allowlists per listing. A requested column outside the allowlist
// silently falls back to id, so listing endpoints stay permissive.
var (
	bookSortColumns     = []string{"id", "title", "author", "category", "status", "created_at"}
	memberSortColumns   = []string{"id", "name", "email", "phone", "created_at"}
	borrowedSortColumns = []string{"id", "title", "author", "borrower", "borrower_id", "borrow_date", "return_date"}
)

// sortExpr maps the requested column onto the allowlist. The returned
// expression is always assembled from the allowlist constants and the Order
// enum, never from client input, so it is safe to splice into ORDER BY.
func sortExpr(requested string, allowed []string, order model.Order) string {
	col := "id"
	for _, c := range allowed {
		if requested == c {
			col = c
			break
		}
	}
	if order != model.OrderDesc {
		order = model.OrderAsc
	}
	return col + " " + string(order)
}

// withTextFilter adds a parameter-bound substring predicate; an empty
// value matches everything.
func withTextFilter(q sq.SelectBuilder, column, value string) sq.SelectBuilder {
	if value == "" {
		return q
	}
	return q.Where(sq.Like{column: "%" + value + "%"})
}

func withPage(q sq.SelectBuilder, p model.Page) sq.SelectBuilder {
	return q.Limit(p.PageSize()).Offset(p.Offset())
}

func buildListBooksQuery(p model.BookSearchParams) (string, []interface{}, error) {
	q := qb.Select("id", "title", "author", "category", "status", "created_at").
		From(booksTableName)

	q = withTextFilter(q, "title", p.Title)
	q = withTextFilter(q, "author", p.Author)
	q = withTextFilter(q, "category", p.Category)
	if p.Status != "" && p.Status != model.BookStatusAll {
		q = q.Where(sq.Eq{"status": p.Status})
	}

	return withPage(q.OrderBy(sortExpr(p.OrderBy, bookSortColumns, p.Order)), p.Page).ToSql()
}

func buildListMembersQuery(p model.MemberSearchParams) (string, []interface{}, error) {
	q := qb.Select("id", "name", "email", "phone", "created_at").
		From(membersTableName)

	q = withTextFilter(q, "name", p.Name)
	q = withTextFilter(q, "email", p.Email)
	q = withTextFilter(q, "phone", p.Phone)

	return withPage(q.OrderBy(sortExpr(p.OrderBy, memberSortColumns, p.Order)), p.Page).ToSql()
}

func buildListBorrowedQuery(p model.BorrowSearchParams) (string, []interface{}, error) {
	q := qb.Select("id", "title", "author", "borrower", "borrower_id", "borrow_date", "return_date", "status").
		From(borrowedBooksViewName)

	if p.MemberID != nil {
		q = q.Where(sq.Eq{"borrower_id": *p.MemberID})
	}
	q = withTextFilter(q, "title", p.Title)
	q = withTextFilter(q, "author", p.Author)
	q = withTextFilter(q, "borrower", p.Borrower)
	if p.Status != "" && p.Status != model.BorrowStatusAll {
		q = q.Where(sq.Eq{"status": p.Status})
	}

	return withPage(q.OrderBy(sortExpr(p.OrderBy, borrowedSortColumns, p.Order)), p.Page).ToSql()
}
