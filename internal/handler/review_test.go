package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/anthera/powerleave/internal/queue"
	"github.com/anthera/powerleave/internal/repository"
)

func newReviewHandler(t *testing.T, publish func(context.Context, queue.LeaveReviewedEvent) error) (*ReviewHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewReviewHandler(
		repository.NewLeaveRequestRepo(db),
		repository.NewLeaveBalanceRepo(db),
		repository.NewLeaveTypeRepo(db),
		publish,
	), mock
}

func reviewCtx(t *testing.T, id, body string, adminID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := newRequestCtx(t, http.MethodPut, "/v1/leaves/requests/"+id+"/review", body, adminID, "admin")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestReviewApprovalAccruesWorkingDays(t *testing.T) {
	events := make(chan queue.LeaveReviewedEvent, 1)
	h, mock := newReviewHandler(t, func(_ context.Context, ev queue.LeaveReviewedEvent) error {
		events <- ev
		return nil
	})

	mock.ExpectBegin()
	// Request 7: 3 days at 4 hours per day, starting 2025-06-01.
	mock.ExpectQuery(`SELECT id, user_id, leave_type_id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "leave_type_id", "start_date", "end_date", "days", "hours", "status", "notes",
		}).AddRow(7, 5, 2, "2025-06-01", "2025-06-03", 3, 4.0, "pending", ""))
	mock.ExpectExec(`UPDATE leave_requests SET status`).
		WithArgs("approved", uint64(9), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// 3 days x (4h / 8h) = 1.5 working days against the 2025 balance.
	mock.ExpectExec(`INSERT INTO leave_balances`).
		WithArgs(uint64(5), 2025, 1.5, uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	// Type name lookup for the published event.
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(2)).
		WillReturnRows(leaveTypeRows())

	c, rec := reviewCtx(t, "7", `{"status":"approved"}`, 9)
	if err := h.Review(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}

	select {
	case ev := <-events:
		if ev.RequestID != 7 || ev.UserID != 5 || ev.ReviewerID != 9 || ev.Status != "approved" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("leave.reviewed event not published")
	}
}

func TestReviewRejectionSkipsAccrual(t *testing.T) {
	h, mock := newReviewHandler(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, leave_type_id`).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "leave_type_id", "start_date", "end_date", "days", "hours", "status", "notes",
		}).AddRow(7, 5, 2, "2025-06-01", "2025-06-03", 3, 8.0, "pending", ""))
	mock.ExpectExec(`UPDATE leave_requests SET status`).
		WithArgs("rejected", uint64(9), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := reviewCtx(t, "7", `{"status":"rejected"}`, 9)
	if err := h.Review(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("balance must stay untouched on rejection: %v", err)
	}
}

func TestReviewUnknownRequest(t *testing.T) {
	h, mock := newReviewHandler(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, user_id, leave_type_id`).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := reviewCtx(t, "99", `{"status":"approved"}`, 9)
	if err := h.Review(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusNotFound, "request not found")
}

func TestReviewRejectsUnknownStatus(t *testing.T) {
	h, _ := newReviewHandler(t, nil)
	c, rec := reviewCtx(t, "7", `{"status":"maybe"}`, 9)
	if err := h.Review(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusUnprocessableEntity, "status must be approved or rejected")
}
