package handler

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/dateutil"
	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/repository"
)

// StatsHandler computes the dashboard figures.
type StatsHandler struct {
	Users    *repository.UserRepo
	Requests *repository.LeaveRequestRepo
	Balances *repository.LeaveBalanceRepo
}

func NewStatsHandler(u *repository.UserRepo, r *repository.LeaveRequestRepo, b *repository.LeaveBalanceRepo) *StatsHandler {
	return &StatsHandler{Users: u, Requests: r, Balances: b}
}

type statsResp struct {
	ApprovedCount   int `json:"approved_count"`
	PendingCount    int `json:"pending_count"`
	TotalStaff      int `json:"total_staff"`
	AvailableStaff  int `json:"available_staff"`
	OnLeaveToday    int `json:"on_leave_today"`
	UtilizationRate int `json:"utilization_rate"`
}

// GetStats returns current-year dashboard counters.  "Current year"
// means requests whose start date falls in this calendar year.  The
// utilization rate divides approved leave days by the total allotted
// days across all balances; an empty company reports 0.
func (h *StatsHandler) GetStats(c echo.Context) error {
	if h.Requests == nil {
		return c.JSON(http.StatusOK, statsResp{})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	year := now.Year()
	today := dateutil.FormatDate(now)

	approved, err := h.Requests.CountByStatusYear(ctx, model.StatusApproved, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	pending, err := h.Requests.CountByStatusYear(ctx, model.StatusPending, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	totalStaff, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	onLeave, err := h.Requests.CountApprovedOnDate(ctx, today)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	usedDays, err := h.Requests.SumApprovedDaysYear(ctx, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}
	totalDays, err := h.Balances.SumTotalDaysForYear(ctx, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stats query failed"})
	}

	utilization := 0
	if totalDays > 0 {
		utilization = int(math.Round(float64(usedDays) / float64(totalDays) * 100))
	}

	return c.JSON(http.StatusOK, statsResp{
		ApprovedCount:   approved,
		PendingCount:    pending,
		TotalStaff:      totalStaff,
		AvailableStaff:  totalStaff - onLeave,
		OnLeaveToday:    onLeave,
		UtilizationRate: utilization,
	})
}
