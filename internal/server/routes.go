package server

import (
	"net/http"

	"bookstore/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Config.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	handler.NewBookHandler(d.Books).RegisterRoutes(api)
	handler.NewOrderHandler(d.Orders).RegisterRoutes(api)
	handler.NewNotificationHandler(d.Hub, d.Config.SubscriberTimeout).RegisterRoutes(api)

	//JWT_SECRETが無ければadminは出さない
	if d.Config.AdminEnabled() {
		handler.NewAdminHandler(d.Books).RegisterRoutes(e, d.Config)
	}
}
