package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"bookstore/internal/config"
	"bookstore/internal/domain/model"
	"bookstore/internal/handler"
	"bookstore/internal/infra/db"
	infraRepo "bookstore/internal/infra/repository"
	"bookstore/internal/notification"
	"bookstore/internal/propagation"
	"bookstore/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler_test_secret"

type testApp struct {
	e      *echo.Echo
	hub    *notification.Hub
	prop   *propagation.Propagator
	books  *usecase.BookUsecase
	orders *usecase.OrderUsecase
}

func newTestApp(t *testing.T, seed ...model.Book) *testApp {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "handler.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	app := &testApp{hub: notification.NewHub(notification.WithBuffer(32))}
	failures := infraRepo.NewPropagationFailureGormRepository(gdb)
	app.books = usecase.NewBookUsecase(
		infraRepo.NewBookGormRepository(gdb),
		infraRepo.NewStockAdjustmentGormRepository(gdb),
		failures,
		app.hub,
	)
	require.NoError(t, app.books.SeedBooks(context.Background(), seed))

	app.prop = propagation.New(app.books, app.hub, propagation.Options{
		Workers:        1,
		QueueSize:      16,
		EnqueueTimeout: time.Second,
		Failures:       []propagation.FailureHandler{propagation.StoreFailures(failures, zerolog.Nop())},
	})
	app.prop.Start()
	t.Cleanup(func() { _ = app.prop.Shutdown(context.Background()) })

	app.orders = usecase.NewOrderUsecase(
		infraRepo.NewTxManagerGorm(gdb),
		infraRepo.NewOrderGormRepository(gdb),
		app.prop,
		app.hub,
		nil,
		zerolog.Nop(),
	)

	app.e = echo.New()
	api := app.e.Group("/api")
	handler.NewBookHandler(app.books).RegisterRoutes(api)
	handler.NewOrderHandler(app.orders).RegisterRoutes(api)
	handler.NewNotificationHandler(app.hub, time.Minute).RegisterRoutes(api)
	handler.NewAdminHandler(app.books).RegisterRoutes(app.e, config.Config{JWTSecret: testSecret})
	return app
}

func (a *testApp) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func book(isbn string, stock int64) model.Book {
	return model.Book{ISBN: isbn, Title: "title " + isbn, Author: "author", PublishYear: 2020, Price: 10, Stock: stock}
}

func orderBody(lines ...handler.OrderLineRequest) handler.OrderCreateRequest {
	return handler.OrderCreateRequest{Books: lines}
}

func line(bookID string, qty int64) handler.OrderLineRequest {
	return handler.OrderLineRequest{BookID: bookID, Quantity: qty}
}

