package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/errs"
	"github.com/bookshelf-labs/lending-service/internal/model"
	md "github.com/bookshelf-labs/lending-service/pkg/middleware"
	"github.com/bookshelf-labs/lending-service/pkg/validate"
)

type Handler struct {
	svc LendingService
	log *zap.Logger
}

func New(svc LendingService, log *zap.Logger) *Handler {
	return &Handler{
		svc: svc,
		log: log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.CreateBook)
	api.GET("/books/:id", h.GetBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	api.GET("/members", h.ListMembers)
	api.POST("/members", h.CreateMember)
	api.GET("/members/:id", h.GetMember)
	api.PUT("/members/:id", h.UpdateMember)
	api.DELETE("/members/:id", h.DeleteMember)
	api.GET("/members/:id/borrowings", h.ListMemberBorrowings)

	api.GET("/borrowings", h.ListBorrowings)
	api.POST("/borrowings", h.Borrow)
	api.POST("/borrowings/return", h.Return)
	api.DELETE("/borrowings/:id", h.DeleteBorrowing)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	if err := h.svc.Ping(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListBooks(c echo.Context) error {
	params := model.BookSearchParams{
		Title:    c.QueryParam("title"),
		Author:   c.QueryParam("author"),
		Category: c.QueryParam("category"),
		Status:   model.ParseBookStatusFilter(c.QueryParam("status")),
		OrderBy:  c.QueryParam("orderBy"),
		Order:    model.ParseOrder(c.QueryParam("order")),
		Page:     pageParams(c),
	}

	books, err := h.svc.ListBooks(c.Request().Context(), params)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var req model.NewBook
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	book, err := h.svc.CreateBook(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	book, err := h.svc.GetBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.UpdateBook
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.svc.UpdateBook(c.Request().Context(), id, req); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBook(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMembers(c echo.Context) error {
	params := model.MemberSearchParams{
		Name:    c.QueryParam("name"),
		Email:   c.QueryParam("email"),
		Phone:   c.QueryParam("phone"),
		OrderBy: c.QueryParam("orderBy"),
		Order:   model.ParseOrder(c.QueryParam("order")),
		Page:    pageParams(c),
	}

	members, err := h.svc.ListMembers(c.Request().Context(), params)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var req model.NewMember
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	member, err := h.svc.CreateMember(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) GetMember(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	member, err := h.svc.GetMember(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req model.UpdateMember
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.svc.UpdateMember(c.Request().Context(), id, req); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMember(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListMemberBorrowings(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	params := borrowSearchParams(c)
	params.MemberID = &id

	items, err := h.svc.ListBorrowed(c.Request().Context(), params)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListBorrowings(c echo.Context) error {
	items, err := h.svc.ListBorrowed(c.Request().Context(), borrowSearchParams(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type borrowRequest struct {
	BookID   int `json:"bookId"`
	MemberID int `json:"memberId"`
}

func (h *Handler) Borrow(c echo.Context) error {
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookID == 0 || req.MemberID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("bookId and memberId are required"))
	}
	bw, err := h.svc.Borrow(c.Request().Context(), req.BookID, req.MemberID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, bw)
}

func (h *Handler) Return(c echo.Context) error {
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.BookID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, errors.New("bookId is required"))
	}
	bw, err := h.svc.Return(c.Request().Context(), req.BookID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, bw)
}

func (h *Handler) DeleteBorrowing(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBorrowing(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.New("id is invalid"))
	}
	return id, nil
}

// pageParams decodes pagination permissively: malformed values fall back
// to defaults instead of rejecting the request.
func pageParams(c echo.Context) model.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return model.Page{Page: page, Limit: limit}
}

func borrowSearchParams(c echo.Context) model.BorrowSearchParams {
	return model.BorrowSearchParams{
		Title:    c.QueryParam("title"),
		Author:   c.QueryParam("author"),
		Borrower: c.QueryParam("borrower"),
		Status:   model.ParseBorrowStatusFilter(c.QueryParam("status")),
		OrderBy:  c.QueryParam("orderBy"),
		Order:    model.ParseOrder(c.QueryParam("order")),
		Page:     pageParams(c),
	}
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
