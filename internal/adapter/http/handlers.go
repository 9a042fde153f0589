package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

// Health is the liveness probe. It touches neither MySQL nor redis; a
// storage outage surfaces in request errors, not in restarts.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "shelfwise",
		"time":    time.Now().UTC().Format(time.RFC3339Nano),
	})
}
