package handler

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anthera/powerleave/internal/repository"
)

func newStatsHandler(t *testing.T) (*StatsHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewStatsHandler(
		repository.NewUserRepo(db),
		repository.NewLeaveRequestRepo(db),
		repository.NewLeaveBalanceRepo(db),
	), mock
}

func expectStatsQueries(mock sqlmock.Sqlmock, approved, pending, staff, onLeave, usedDays, totalDays int) {
	year := time.Now().UTC().Year()
	prefix := fmt.Sprintf("%04d-%%", year)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leave_requests`).
		WithArgs("approved", prefix).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(approved))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leave_requests`).
		WithArgs("pending", prefix).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(pending))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(staff))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leave_requests WHERE status='approved'`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(onLeave))
	mock.ExpectQuery(`SELECT SUM\(days\) FROM leave_requests`).
		WithArgs(prefix).
		WillReturnRows(sqlmock.NewRows([]string{"s"}).AddRow(usedDays))
	mock.ExpectQuery(`SELECT SUM\(total_days\) FROM leave_balances`).
		WithArgs(year).
		WillReturnRows(sqlmock.NewRows([]string{"s"}).AddRow(totalDays))
}

func TestGetStats(t *testing.T) {
	h, mock := newStatsHandler(t)
	expectStatsQueries(mock, 4, 2, 10, 3, 26, 260)

	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/stats", "", 5, "user")
	if err := h.GetStats(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	checks := map[string]float64{
		"approved_count":   4,
		"pending_count":    2,
		"total_staff":      10,
		"on_leave_today":   3,
		"available_staff":  7,  // 10 staff - 3 away today
		"utilization_rate": 10, // round(26/260*100)
	}
	for field, want := range checks {
		if got := body[field]; got != want {
			t.Errorf("%s = %v, want %v", field, got, want)
		}
	}
}

// A company with no balances reports zero utilization rather than
// dividing by zero.
func TestGetStatsZeroDenominator(t *testing.T) {
	h, mock := newStatsHandler(t)
	expectStatsQueries(mock, 0, 0, 0, 0, 0, 0)

	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/stats", "", 5, "user")
	if err := h.GetStats(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["utilization_rate"] != float64(0) {
		t.Errorf("utilization_rate = %v, want 0", body["utilization_rate"])
	}
	if body["available_staff"] != float64(0) {
		t.Errorf("available_staff = %v, want 0", body["available_staff"])
	}
}

func TestGetStatsDegradedMode(t *testing.T) {
	h := NewStatsHandler(nil, nil, nil)
	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/stats", "", 5, "user")
	if err := h.GetStats(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	for _, field := range []string{"approved_count", "pending_count", "total_staff", "utilization_rate"} {
		if body[field] != float64(0) {
			t.Errorf("%s = %v, want 0", field, body[field])
		}
	}
}
