package handler

import (
	"net/http"
	"strconv"

	"bookstore/internal/config"
	"bookstore/internal/middleware"
	repo "bookstore/internal/repository"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /admin の在庫調整と反映失敗の一覧
type AdminHandler struct {
	uc *usecase.BookUsecase
}

func NewAdminHandler(uc *usecase.BookUsecase) *AdminHandler {
	return &AdminHandler{uc: uc}
}

type AdminStockRequest struct {
	Quantity *int64 `json:"quantity"`
	Strategy string `json:"strategy"`
	Reason   string `json:"reason"`
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/admin")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.AdminRoleGuard())

	g.PUT("/books/:isbn/stock", h.updateStock)
	g.GET("/books/:isbn/adjustments", h.listAdjustments)
	g.GET("/propagation-failures", h.listFailures)
}

func (h *AdminHandler) updateStock(c echo.Context) error {
	adminID, _ := c.Get(middleware.CtxUserIDKey).(string)

	var req AdminStockRequest
	if err := c.Bind(&req); err != nil {
		return writeMalformed(c, err)
	}
	if req.Quantity == nil {
		return writeValidation(c, map[string]string{"quantity": "required"})
	}

	out, err := h.uc.AdjustStock(c.Request().Context(), usecase.AdjustStockInput{
		AdminUserID: adminID,
		BookID:      c.Param("isbn"),
		Quantity:    *req.Quantity,
		Strategy:    req.Strategy,
		Reason:      req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listAdjustments(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return writeValidation(c, map[string]string{"limit": "must be a number"})
	}

	out, err := h.uc.ListAdjustments(c.Request().Context(), c.Param("isbn"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) listFailures(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return writeValidation(c, map[string]string{"limit": "must be a number"})
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return writeValidation(c, map[string]string{"offset": "must be a number"})
	}

	out, err := h.uc.ListPropagationFailures(c.Request().Context(), repo.PropagationFailureFilter{
		OrderID: c.QueryParam("order_id"),
		BookID:  c.QueryParam("book_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func queryInt(c echo.Context, name string, def int) (int, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
