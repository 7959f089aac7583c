package handler

import (
	"net/http"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type OrderLineRequest struct {
	BookID   string `json:"bookId"`
	Quantity int64  `json:"quantity"`
}

type OrderCreateRequest struct {
	Books []OrderLineRequest `json:"books"`
}

type OrderCreateResponse struct {
	OrderID string `json:"orderId"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.POST("/orders", h.create)
	g.GET("/orders/:id", h.detail)
	g.DELETE("/orders/:id", h.delete)
}

func (h *OrderHandler) create(c echo.Context) error {
	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return writeMalformed(c, err)
	}

	//空の注文は入口で弾く
	if len(req.Books) == 0 {
		return writeValidation(c, map[string]string{"books": "must not be empty"})
	}

	in := usecase.CreateOrderInput{Lines: make([]usecase.OrderLineInput, 0, len(req.Books))}
	for _, b := range req.Books {
		in.Lines = append(in.Lines, usecase.OrderLineInput{BookID: b.BookID, Quantity: b.Quantity})
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, OrderCreateResponse{OrderID: out.ID})
}

func (h *OrderHandler) list(c echo.Context) error {
	out, err := h.uc.ListOrders(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	out, err := h.uc.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// 無い注文でも204
func (h *OrderHandler) delete(c echo.Context) error {
	if err := h.uc.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
