package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/errs"
	"github.com/bookshelf-labs/lending-service/internal/handler"
	"github.com/bookshelf-labs/lending-service/internal/model"
	"github.com/bookshelf-labs/lending-service/pkg/validate"

	service_mocks "github.com/bookshelf-labs/lending-service/internal/handler/mocks"
)

func newTestRouter(t *testing.T) (*echo.Echo, *service_mocks.MockLendingService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	svc := service_mocks.NewMockLendingService(c)
	log := zap.NewExample().Named("test")
	h := handler.New(svc, log)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/books", h.ListBooks)
	e.PUT("/books/:id", h.UpdateBook)
	e.POST("/borrowings", h.Borrow)
	e.POST("/borrowings/return", h.Return)
	e.DELETE("/borrowings/:id", h.DeleteBorrowing)
	return e, svc
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/books?title=go&status=all&orderBy=title&order=desc&page=2&limit=5",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ListBooks(context.Background(), model.BookSearchParams{
						Title:   "go",
						Status:  model.BookStatusAll,
						OrderBy: "title",
						Order:   model.OrderDesc,
						Page:    model.Page{Page: 2, Limit: 5},
					}).
					Return([]model.Book{
						{
							ID:     1,
							Title:  "The Go Programming Language",
							Author: "Alan Donovan",
							Status: model.BookStatusAvailable,
						},
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":1,"title":"The Go Programming Language","author":"Alan Donovan","category":null,"status":"available","createdAt":"0001-01-01T00:00:00Z"}]`,
			},
		},
		{
			name:   "malformed paging defaults instead of rejecting",
			target: "/books?page=two&limit=ten",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ListBooks(context.Background(), model.BookSearchParams{Order: model.OrderAsc}).
					Return([]model.Book{}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[]`,
			},
		},
		{
			name:   "err. internal",
			target: "/books",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					ListBooks(context.Background(), model.BookSearchParams{Order: model.OrderAsc}).
					Return(nil, errors.New("db internal"))
			},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_UpdateBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		target       string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "partial body merges only provided fields",
			target: "/books/1",
			body:   `{"title":"New Title"}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					UpdateBook(context.Background(), 1, model.UpdateBook{Title: strPtr("New Title")}).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: ``,
			},
		},
		{
			name:   "empty body keeps stored values",
			target: "/books/1",
			body:   `{}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					UpdateBook(context.Background(), 1, model.UpdateBook{}).
					Return(nil)
			},
			response: response{
				expectedCode: http.StatusNoContent,
				expectedBody: ``,
			},
		},
		{
			name:   "err. not found",
			target: "/books/99",
			body:   `{"author":"Nobody"}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					UpdateBook(context.Background(), 99, model.UpdateBook{Author: strPtr("Nobody")}).
					Return(errs.NotFound("book"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"book: not found"}`,
			},
		},
		{
			name:         "err. bad status value",
			target:       "/books/1",
			body:         `{"status":"lost"}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPut, tt.target, strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Borrow(t *testing.T) {
	t.Parallel()
	borrowDate := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":1,"memberId":2}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(context.Background(), 1, 2).
					Return(model.Borrowing{
						ID:         10,
						BookID:     intPtr(1),
						MemberID:   intPtr(2),
						BorrowDate: borrowDate,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":10,"bookId":1,"memberId":2,"borrowDate":"2024-05-01T10:00:00Z","returnDate":null}`,
			},
		},
		{
			name: "err. member not found",
			body: `{"bookId":1,"memberId":99}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(context.Background(), 1, 99).
					Return(model.Borrowing{}, errs.NotFound("member"))
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"member: not found"}`,
			},
		},
		{
			name: "err. book not available",
			body: `{"bookId":1,"memberId":2}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Borrow(context.Background(), 1, 2).
					Return(model.Borrowing{}, errs.Conflict("book is not available"))
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is not available: conflict"}`,
			},
		},
		{
			name:         "err. missing member id",
			body:         `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"bookId and memberId are required"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/borrowings", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_Return(t *testing.T) {
	t.Parallel()
	borrowDate := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	returnDate := time.Date(2024, 5, 9, 16, 30, 0, 0, time.UTC)
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockLendingService)

	var tests = []struct {
		name         string
		body         string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(context.Background(), 1).
					Return(model.Borrowing{
						ID:         10,
						BookID:     intPtr(1),
						MemberID:   intPtr(2),
						BorrowDate: borrowDate,
						ReturnDate: &returnDate,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":10,"bookId":1,"memberId":2,"borrowDate":"2024-05-01T10:00:00Z","returnDate":"2024-05-09T16:30:00Z"}`,
			},
		},
		{
			name: "err. not borrowed",
			body: `{"bookId":1}`,
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().
					Return(context.Background(), 1).
					Return(model.Borrowing{}, errs.Conflict("book is not borrowed"))
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"book is not borrowed: conflict"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodPost, "/borrowings/return", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_DeleteBorrowing(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name         string
		target       string
		mockBehavior func(r *service_mocks.MockLendingService)
		expectedCode int
	}{
		{
			name:   "ok",
			target: "/borrowings/10",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().DeleteBorrowing(context.Background(), 10).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:   "err. not found",
			target: "/borrowings/99",
			mockBehavior: func(r *service_mocks.MockLendingService) {
				r.EXPECT().DeleteBorrowing(context.Background(), 99).Return(errs.NotFound("borrowing"))
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "err. invalid id",
			target:       "/borrowings/ten",
			mockBehavior: func(r *service_mocks.MockLendingService) {},
			expectedCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, svc := newTestRouter(t)
			tt.mockBehavior(svc)

			r := httptest.NewRequest(http.MethodDelete, tt.target, http.NoBody)
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
