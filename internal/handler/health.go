package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness probes.  It deliberately skips the database:
// the service stays up (degraded) without one.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
