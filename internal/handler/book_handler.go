package handler

import (
	"net/http"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/books と /api/books_stock
type BookHandler struct {
	uc *usecase.BookUsecase
}

// DI
func NewBookHandler(uc *usecase.BookUsecase) *BookHandler {
	return &BookHandler{uc: uc}
}

func (h *BookHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/books", h.list)
	g.GET("/books/:isbn", h.detail)

	g.GET("/books_stock", h.listStock)
	g.GET("/books_stock/:id", h.stockDetail)
}

func (h *BookHandler) list(c echo.Context) error {
	books, err := h.uc.ListBooks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) detail(c echo.Context) error {
	b, err := h.uc.GetBook(c.Request().Context(), c.Param("isbn"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookHandler) listStock(c echo.Context) error {
	out, err := h.uc.ListBookStocks(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookHandler) stockDetail(c echo.Context) error {
	out, err := h.uc.GetBookStock(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
