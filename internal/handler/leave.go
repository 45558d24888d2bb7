package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/dateutil"
	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/repository"
)

// Year bounds accepted on leave request dates.  Anything outside is a
// typo, not a plan.
const (
	minRequestYear = 2020
	maxRequestYear = 2100
)

const maxNotesLen = 500

// LeaveHandler serves the leave type, balance and request endpoints.
type LeaveHandler struct {
	Types    *repository.LeaveTypeRepo
	Balances *repository.LeaveBalanceRepo
	Requests *repository.LeaveRequestRepo
}

func NewLeaveHandler(t *repository.LeaveTypeRepo, b *repository.LeaveBalanceRepo, r *repository.LeaveRequestRepo) *LeaveHandler {
	return &LeaveHandler{Types: t, Balances: b, Requests: r}
}

// GetTypes lists all leave types.  Public: the client renders the
// request form before login completes.
func (h *LeaveHandler) GetTypes(c echo.Context) error {
	if h.Types == nil {
		return c.JSON(http.StatusOK, []model.LeaveType{})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Types.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list leave types failed"})
	}
	return c.JSON(http.StatusOK, types)
}

// GetBalance returns the caller's balances for the current year.
func (h *LeaveHandler) GetBalance(c echo.Context) error {
	if h.Balances == nil {
		return c.JSON(http.StatusOK, []repository.BalanceDetail{})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	balances, err := h.Balances.ListForUserYear(ctx, uid, time.Now().UTC().Year())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list balances failed"})
	}
	return c.JSON(http.StatusOK, balances)
}

type createRequestReq struct {
	LeaveTypeID uint64   `json:"leave_type_id"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Hours       *float64 `json:"hours"` // nil means a standard 8h day
	Notes       string   `json:"notes"`
}

// CreateRequest validates and stores a new leave request.  Checks run
// in a fixed order and the first failure wins:
// type exists, dates parse, years sane, end after start, span capped,
// hours in range, notes length, then the overlap check inside the
// insert transaction.
func (h *LeaveHandler) CreateRequest(c echo.Context) error {
	if h.Requests == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.LeaveTypeID == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
	}
	if _, err := h.Types.GetByID(ctx, req.LeaveTypeID); err != nil {
		if err == repository.ErrLeaveTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup leave type failed"})
	}

	start, err := dateutil.ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid date format"})
	}
	end, err := dateutil.ParseDate(strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid date format"})
	}
	if y := start.Year(); y < minRequestYear || y > maxRequestYear {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date out of range"})
	}
	if y := end.Year(); y < minRequestYear || y > maxRequestYear {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date out of range"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "end date must not be before start date"})
	}
	days := dateutil.DaysBetween(start, end)
	if days > 365 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "leave request must not span more than 365 days"})
	}

	hours := float64(dateutil.HoursPerDay)
	if req.Hours != nil {
		hours = *req.Hours
	}
	if hours <= 0 || hours > 24 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "hours must be between 0 and 24"})
	}
	// Characters, not bytes: accented notes must not hit the cap early.
	if utf8.RuneCountInString(req.Notes) > maxNotesLen {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "notes must not exceed 500 characters"})
	}

	lr := model.LeaveRequest{
		UserID:      uid,
		LeaveTypeID: req.LeaveTypeID,
		StartDate:   dateutil.FormatDate(start),
		EndDate:     dateutil.FormatDate(end),
		Days:        days,
		Hours:       hours,
		Notes:       strings.TrimSpace(req.Notes),
	}
	id, err := h.Requests.Create(ctx, &lr)
	if err != nil {
		if err == repository.ErrOverlap {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a leave request for these dates"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "request_id": id})
}

// GetRequests lists leave requests.  Non-admin callers are always
// scoped to their own requests regardless of query parameters; admins
// may filter by user_id and status.
func (h *LeaveHandler) GetRequests(c echo.Context) error {
	if h.Requests == nil {
		return c.JSON(http.StatusOK, []repository.RequestDetail{})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	filter := repository.RequestFilter{UserID: uid}
	if isAdmin(c) {
		filter.UserID = 0
		if raw := c.QueryParam("user_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
			}
			filter.UserID = id
		}
	}
	switch status := c.QueryParam("status"); status {
	case "", model.StatusPending, model.StatusApproved, model.StatusRejected:
		filter.Status = status
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	requests, err := h.Requests.List(ctx, filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list requests failed"})
	}
	return c.JSON(http.StatusOK, requests)
}

// usageRow is the reporting shape for the per-user usage rollup.  The
// client exports it as CSV.
type usageRow struct {
	UserID        uint64  `json:"user_id"`
	UserName      string  `json:"user_name"`
	LeaveTypeID   uint64  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name"`
	TotalDays     int     `json:"total_days"`
	UsedDays      float64 `json:"used_days"`
	AvailableDays float64 `json:"available_days"`
}

// GetUsage returns the current-year usage rollup, optionally filtered
// by leave type.  Admin only.
func (h *LeaveHandler) GetUsage(c echo.Context) error {
	if h.Balances == nil {
		return c.JSON(http.StatusOK, []usageRow{})
	}
	var typeID uint64
	if raw := c.QueryParam("leave_type_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid leave_type_id"})
		}
		typeID = id
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	balances, err := h.Balances.UsageSummary(ctx, time.Now().UTC().Year(), typeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "usage summary failed"})
	}
	rows := make([]usageRow, 0, len(balances))
	for _, b := range balances {
		rows = append(rows, usageRow{
			UserID:        b.UserID,
			UserName:      b.UserName,
			LeaveTypeID:   b.LeaveTypeID,
			LeaveTypeName: b.LeaveTypeName,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			AvailableDays: b.RemainingDays,
		})
	}
	return c.JSON(http.StatusOK, rows)
}

// ----- leave type management (admin) -----

type leaveTypeReq struct {
	Name             string `json:"name"`
	Color            string `json:"color"`
	RequiresApproval *bool  `json:"requires_approval"`
	DaysPerYear      int    `json:"days_per_year"`
}

func (h *LeaveHandler) CreateType(c echo.Context) error {
	if h.Types == nil {
		return dbUnavailable(c)
	}
	var req leaveTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.DaysPerYear < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "days_per_year must not be negative"})
	}
	if req.Color == "" {
		req.Color = "#3b82f6"
	}
	requiresApproval := true
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Types.Create(ctx, req.Name, req.Color, requiresApproval, req.DaysPerYear)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create leave type failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

func (h *LeaveHandler) UpdateType(c echo.Context) error {
	if h.Types == nil {
		return dbUnavailable(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req leaveTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.DaysPerYear < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "days_per_year must not be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var requiresApproval bool
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	} else {
		// Omitted in the payload: keep the stored value.
		current, err := h.Types.GetByID(ctx, id)
		if err != nil {
			if err == repository.ErrLeaveTypeNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update leave type failed"})
		}
		requiresApproval = current.RequiresApproval
	}

	if err := h.Types.Update(ctx, id, req.Name, req.Color, requiresApproval, req.DaysPerYear); err != nil {
		if err == repository.ErrLeaveTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update leave type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeleteType removes a leave type.  Existing requests or balances keep
// the row alive; the FK restriction surfaces as a 409.
func (h *LeaveHandler) DeleteType(c echo.Context) error {
	if h.Types == nil {
		return dbUnavailable(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Types.Delete(ctx, id); err != nil {
		switch err {
		case repository.ErrLeaveTypeNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "leave type is in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete leave type failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
