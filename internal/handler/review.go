package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/dateutil"
	"github.com/anthera/powerleave/internal/model"
	"github.com/anthera/powerleave/internal/queue"
	"github.com/anthera/powerleave/internal/repository"
)

// ReviewHandler handles the admin approve/reject flow.  Status update
// and balance accrual share one transaction; the reviewed event is
// published after commit and never fails the request.
type ReviewHandler struct {
	Requests *repository.LeaveRequestRepo
	Balances *repository.LeaveBalanceRepo
	Types    *repository.LeaveTypeRepo
	// Publish sends the post-review event to the broker.  Nil disables
	// publishing (tests, broker-less deployments).
	Publish func(ctx context.Context, ev queue.LeaveReviewedEvent) error
}

func NewReviewHandler(r *repository.LeaveRequestRepo, b *repository.LeaveBalanceRepo, t *repository.LeaveTypeRepo,
	publish func(ctx context.Context, ev queue.LeaveReviewedEvent) error) *ReviewHandler {
	return &ReviewHandler{Requests: r, Balances: b, Types: t, Publish: publish}
}

type reviewReq struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"review_notes"`
}

// Review sets a request's status and, on approval, charges the spent
// working days to the requester's balance for the year the leave
// starts in.  A request may be re-reviewed; the latest verdict wins.
func (h *ReviewHandler) Review(c echo.Context) error {
	if h.Requests == nil {
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
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Status != model.StatusApproved && req.Status != model.StatusRejected {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status must be approved or rejected"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.Requests.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin review failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	lr, err := h.Requests.GetByIDTx(ctx, tx, id)
	if err != nil {
		if err == repository.ErrRequestNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}

	if err := h.Requests.UpdateStatusTx(ctx, tx, id, req.Status, reviewerID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}

	if req.Status == model.StatusApproved {
		// Charge against the year the leave starts in; a Dec–Jan span
		// books entirely to the earlier year.
		start, err := dateutil.ParseDate(lr.StartDate)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "stored date corrupt"})
		}
		workingDays := float64(lr.Days) * dateutil.HoursToDays(lr.Hours)
		if err := h.Balances.AccrueTx(ctx, tx, lr.UserID, lr.LeaveTypeID, start.Year(), workingDays); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update balance failed"})
		}
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit review failed"})
	}
	committed = true

	h.publishReviewed(lr, req.Status, reviewerID)

	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": req.Status})
}

// publishReviewed emits the leave.reviewed event on a detached context.
// Broker failures are logged, never surfaced.
func (h *ReviewHandler) publishReviewed(lr model.LeaveRequest, status string, reviewerID uint64) {
	if h.Publish == nil {
		return
	}
	typeName := ""
	if h.Types != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if t, err := h.Types.GetByID(ctx, lr.LeaveTypeID); err == nil {
			typeName = t.Name
		}
		cancel()
	}
	ev := queue.LeaveReviewedEvent{
		RequestID:     lr.ID,
		UserID:        lr.UserID,
		ReviewerID:    reviewerID,
		LeaveTypeID:   lr.LeaveTypeID,
		LeaveTypeName: typeName,
		StartDate:     lr.StartDate,
		EndDate:       lr.EndDate,
		Days:          lr.Days,
		Hours:         lr.Hours,
		Status:        status,
		ReviewedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("review: publish leave.reviewed for request %d failed: %v", ev.RequestID, err)
		}
	}()
}
