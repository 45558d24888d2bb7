package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/repository"
)

// CalendarHandler serves the month views: who is away and which days
// the company is closed.
type CalendarHandler struct {
	Requests *repository.LeaveRequestRepo
	Closures *repository.ClosureRepo
}

func NewCalendarHandler(r *repository.LeaveRequestRepo, c *repository.ClosureRepo) *CalendarHandler {
	return &CalendarHandler{Requests: r, Closures: c}
}

// yearMonthParams reads year/month query parameters, defaulting to the
// current month.
func yearMonthParams(c echo.Context) (int, int, bool) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < minRequestYear || y > maxRequestYear {
			return 0, 0, false
		}
		year = y
	}
	if raw := c.QueryParam("month"); raw != "" {
		m, err := strconv.Atoi(raw)
		if err != nil || m < 1 || m > 12 {
			return 0, 0, false
		}
		month = m
	}
	return year, month, true
}

// Monthly returns the pending and approved requests that touch the
// requested month.
func (h *CalendarHandler) Monthly(c echo.Context) error {
	if h.Requests == nil {
		return c.JSON(http.StatusOK, []repository.RequestDetail{})
	}
	year, month, ok := yearMonthParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year/month"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	requests, err := h.Requests.ListByMonth(ctx, year, month)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "calendar query failed"})
	}
	return c.JSON(http.StatusOK, requests)
}

// MonthClosures returns company closures overlapping the requested
// month.
func (h *CalendarHandler) MonthClosures(c echo.Context) error {
	if h.Closures == nil {
		return c.JSON(http.StatusOK, []model.CompanyClosure{})
	}
	year, month, ok := yearMonthParams(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year/month"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	closures, err := h.Closures.ListByMonth(ctx, year, month)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "closures query failed"})
	}
	return c.JSON(http.StatusOK, closures)
}
