package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/dateutil"
	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/repository"
)

// ClosureHandler manages company closures.  Creating a closure with
// auto_leave set books an approved leave request for every member of
// staff over the closure range, all in one transaction.
type ClosureHandler struct {
	Closures   *repository.ClosureRepo
	Users      *repository.UserRepo
	Requests   *repository.LeaveRequestRepo
	Balances   *repository.LeaveBalanceRepo
	Types      *repository.LeaveTypeRepo
	Exceptions *repository.ClosureExceptionRepo
}

func NewClosureHandler(c *repository.ClosureRepo, u *repository.UserRepo, r *repository.LeaveRequestRepo,
	b *repository.LeaveBalanceRepo, t *repository.LeaveTypeRepo, e *repository.ClosureExceptionRepo) *ClosureHandler {
	return &ClosureHandler{Closures: c, Users: u, Requests: r, Balances: b, Types: t, Exceptions: e}
}

// List returns closures, optionally filtered by start year.
func (h *ClosureHandler) List(c echo.Context) error {
	if h.Closures == nil {
		return c.JSON(http.StatusOK, []model.CompanyClosure{})
	}
	year := 0
	if raw := c.QueryParam("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < minRequestYear || y > maxRequestYear {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		year = y
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	closures, err := h.Closures.ListByYear(ctx, year)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list closures failed"})
	}
	return c.JSON(http.StatusOK, closures)
}

type closureReq struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Reason          string `json:"reason"`
	Type            string `json:"type"`
	AutoLeave       bool   `json:"auto_leave"`
	AllowExceptions bool   `json:"allow_exceptions"`
	LeaveTypeID     uint64 `json:"leave_type_id"` // required with auto_leave
}

// Create stores a closure.  With auto_leave set, every user receives an
// approved leave request over the range, charged to their balance like
// a regular approval.  Users whose existing requests already cover any
// of the days are skipped so the generated rows never conflict.
func (h *ClosureHandler) Create(c echo.Context) error {
	if h.Closures == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req closureReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	start, err := dateutil.ParseDate(strings.TrimSpace(req.StartDate))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid date format"})
	}
	end, err := dateutil.ParseDate(strings.TrimSpace(req.EndDate))
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "invalid date format"})
	}
	if end.Before(start) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "end date must not be before start date"})
	}
	switch req.Type {
	case "":
		req.Type = model.ClosureHoliday
	case model.ClosureHoliday, model.ClosureShutdown:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be holiday or shutdown"})
	}
	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reason required"})
	}
	if req.AutoLeave && req.LeaveTypeID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "leave_type_id required with auto_leave"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	closure := model.CompanyClosure{
		StartDate:       dateutil.FormatDate(start),
		EndDate:         dateutil.FormatDate(end),
		Reason:          req.Reason,
		Type:            req.Type,
		AutoLeave:       req.AutoLeave,
		AllowExceptions: req.AllowExceptions,
		CreatedBy:       uid,
	}

	if !req.AutoLeave {
		id, err := h.Closures.Create(ctx, &closure)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create closure failed"})
		}
		return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
	}

	generated, err := h.createWithAutoLeave(ctx, &closure, req.LeaveTypeID)
	if err != nil {
		if err == repository.ErrLeaveTypeNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "leave type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create closure failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": closure.ID, "generated_requests": generated})
}

func (h *ClosureHandler) createWithAutoLeave(ctx context.Context, closure *model.CompanyClosure, leaveTypeID uint64) (int, error) {
	if _, err := h.Types.GetByID(ctx, leaveTypeID); err != nil {
		return 0, err
	}
	start, _ := dateutil.ParseDate(closure.StartDate)
	end, _ := dateutil.ParseDate(closure.EndDate)
	days := dateutil.DaysBetween(start, end)

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := h.Closures.CreateTx(ctx, tx, closure); err != nil {
		return 0, err
	}

	generated := 0
	for _, u := range users {
		if !u.IsActive {
			continue
		}
		overlap, err := h.Requests.HasOverlapTx(ctx, tx, u.ID, closure.StartDate, closure.EndDate)
		if err != nil {
			return 0, err
		}
		if overlap {
			continue
		}
		lr := model.LeaveRequest{
			UserID:      u.ID,
			LeaveTypeID: leaveTypeID,
			StartDate:   closure.StartDate,
			EndDate:     closure.EndDate,
			Days:        days,
			Hours:       dateutil.HoursPerDay,
			Status:      model.StatusApproved,
			Notes:       closure.Reason,
			ClosureID:   &closure.ID,
		}
		if err := h.Requests.InsertTx(ctx, tx, &lr); err != nil {
			return 0, err
		}
		if err := h.Balances.AccrueTx(ctx, tx, u.ID, leaveTypeID, start.Year(), float64(days)); err != nil {
			return 0, err
		}
		generated++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return generated, nil
}

// ----- closure exceptions -----

const exceptionListLimit = 200

type exceptionReq struct {
	Reason string `json:"reason"`
}

// RequestException files an employee's request to work through a
// closure.  Only closures created with allow_exceptions accept one.
func (h *ClosureHandler) RequestException(c echo.Context) error {
	if h.Exceptions == nil {
		return dbUnavailable(c)
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	closureID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || closureID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req exceptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	closure, err := h.Closures.GetByID(ctx, closureID)
	if err != nil {
		if err == repository.ErrClosureNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "closure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup closure failed"})
	}
	if !closure.AllowExceptions {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exceptions not permitted for this closure"})
	}

	id, err := h.Exceptions.Create(ctx, closureID, uid, strings.TrimSpace(req.Reason))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create exception failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": id})
}

// ListExceptions returns exception requests, newest first.  Admins see
// everyone's; other callers only their own.
func (h *ClosureHandler) ListExceptions(c echo.Context) error {
	if h.Exceptions == nil {
		return c.JSON(http.StatusOK, []repository.ExceptionDetail{})
	}
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if isAdmin(c) {
		uid = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Exceptions.List(ctx, uid, exceptionListLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list exceptions failed"})
	}
	return c.JSON(http.StatusOK, items)
}

type exceptionReviewReq struct {
	Status string `json:"status"`
}

// ReviewException decides an exception.  Approval lets the employee
// work through the closure: the leave request auto_leave generated for
// them is removed and the charged days are credited back, all in one
// transaction.
func (h *ClosureHandler) ReviewException(c echo.Context) error {
	if h.Exceptions == nil {
		return dbUnavailable(c)
	}
	reviewerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req exceptionReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.StatusApproved && req.Status != model.StatusRejected {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status must be approved or rejected"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Exceptions.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	exc, err := h.Exceptions.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrExceptionNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exception not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
	}
	if err := h.Exceptions.ReviewTx(ctx, tx, id, req.Status, reviewerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
	}

	if req.Status == model.StatusApproved {
		lr, err := h.Requests.GetClosureLeaveTx(ctx, tx, exc.ClosureID, exc.UserID)
		switch err {
		case nil:
			if err := h.Requests.DeleteTx(ctx, tx, lr.ID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
			}
			start, perr := dateutil.ParseDate(lr.StartDate)
			if perr != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
			}
			credit := -float64(lr.Days) * dateutil.HoursToDays(lr.Hours)
			if err := h.Balances.AccrueTx(ctx, tx, exc.UserID, lr.LeaveTypeID, start.Year(), credit); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
			}
		case repository.ErrRequestNotFound:
			// Nothing was generated for this user; the approval stands
			// on its own.
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "review exception failed"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": req.Status})
}

// Delete removes a closure.  Generated leave requests are kept; they
// went through the books like any approval.
func (h *ClosureHandler) Delete(c echo.Context) error {
	if h.Closures == nil {
		return dbUnavailable(c)
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Closures.Delete(ctx, id); err != nil {
		if err == repository.ErrClosureNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "closure not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete closure failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
