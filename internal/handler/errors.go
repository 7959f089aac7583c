package handler

import (
	"errors"
	"net/http"

	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	msgBookNotFound   = "Book does not exist"
	msgOrderNotFound  = "Order does not exist"
	msgDuplicateBook  = "Order already contains book"
	msgNotEnoughStock = "Not enough stock for book"
	msgInvalidRequest = "The request is invalid or malformed"
	msgInternalError  = "internal error"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type BookErrorResponse struct {
	Error  string `json:"error"`
	BookID string `json:"bookId"`
}

type OrderErrorResponse struct {
	Error   string `json:"error"`
	OrderID string `json:"orderId"`
}

type StockErrorResponse struct {
	Error             string `json:"error"`
	BookID            string `json:"bookId"`
	RequestedQuantity int64  `json:"requestedQuantity"`
	AvailableQuantity int64  `json:"availableQuantity"`
}

type ValidationErrorResponse struct {
	Error            string            `json:"error"`
	ValidationErrors map[string]string `json:"validationErrors"`
}

// usecaseのエラーをHTTPに変換する
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	var (
		bookNF  *usecase.BookNotFoundError
		orderNF *usecase.OrderNotFoundError
		dup     *usecase.DuplicateBookError
		stock   *usecase.InsufficientStockError
		invalid *usecase.InvalidArgumentError
	)
	switch {
	case errors.As(err, &bookNF):
		return c.JSON(http.StatusNotFound, BookErrorResponse{Error: msgBookNotFound, BookID: bookNF.BookID})
	case errors.As(err, &orderNF):
		return c.JSON(http.StatusNotFound, OrderErrorResponse{Error: msgOrderNotFound, OrderID: orderNF.OrderID})
	case errors.As(err, &dup):
		return c.JSON(http.StatusBadRequest, BookErrorResponse{Error: msgDuplicateBook, BookID: dup.BookID})
	case errors.As(err, &stock):
		return c.JSON(http.StatusConflict, StockErrorResponse{
			Error:             msgNotEnoughStock,
			BookID:            stock.BookID,
			RequestedQuantity: stock.Requested,
			AvailableQuantity: stock.Available,
		})
	case errors.As(err, &invalid):
		return writeValidation(c, invalid.Fields)
	}

	//500
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternalError})
}

func writeValidation(c echo.Context, fields map[string]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	return c.JSON(http.StatusBadRequest, ValidationErrorResponse{Error: msgInvalidRequest, ValidationErrors: fields})
}

// bodyが読めないとき
func writeMalformed(c echo.Context, err error) error {
	fields := map[string]string{}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			fields["body"] = msg
		}
	}
	if len(fields) == 0 {
		fields["body"] = "malformed request body"
	}
	return writeValidation(c, fields)
}
