package handler

import (
	"fmt"
	"net/http"
	"time"

	"bookstore/internal/notification"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// GET /api/notifications（SSE）
type NotificationHandler struct {
	hub     *notification.Hub
	timeout time.Duration
}

func NewNotificationHandler(hub *notification.Hub, timeout time.Duration) *NotificationHandler {
	return &NotificationHandler{hub: hub, timeout: timeout}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.stream)
}

func (h *NotificationHandler) stream(c echo.Context) error {
	ctx := c.Request().Context()
	logger := zerolog.Ctx(ctx)

	//ヘッダを返す前に購読する
	sub := h.hub.Subscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			//クライアントが切った
			h.hub.Unsubscribe(sub)
			return nil
		case <-timer.C:
			h.hub.Expire(sub)
			return nil
		case <-sub.Done():
			logger.Debug().Str("subscriber", sub.ID()).Stringer("reason", sub.Reason()).Msg("sse closed by hub")
			return nil
		case ev := <-sub.Events():
			if err := writeSSE(w, ev); err != nil {
				h.hub.Drop(sub)
				return nil
			}
		}
	}
}

func writeSSE(w *echo.Response, ev notification.Event) error {
	data, err := ev.Payload()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name(), data); err != nil {
		return err
	}
	w.Flush()
	return nil
}
