package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/anthera/powerleave/internal/repository"
)

func newLeaveHandler(t *testing.T) (*LeaveHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return NewLeaveHandler(
		repository.NewLeaveTypeRepo(db),
		repository.NewLeaveBalanceRepo(db),
		repository.NewLeaveRequestRepo(db),
	), mock
}

func TestCreateRequestUnknownType(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":9,"start_date":"2025-06-01","end_date":"2025-06-03"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusNotFound, "leave type not found")
}

// The type check runs before date parsing, so an unknown type wins even
// when the dates are also malformed.
func TestCreateRequestTypeCheckedBeforeDates(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(9)).
		WillReturnError(sql.ErrNoRows)

	c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":9,"start_date":"garbage","end_date":"2025-06-03"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusNotFound, "leave type not found")
}

func TestCreateRequestValidation(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{
			"malformed date",
			`{"leave_type_id":1,"start_date":"2025-6-1","end_date":"2025-06-03"}`,
			http.StatusUnprocessableEntity, "invalid date format",
		},
		{
			"impossible date",
			`{"leave_type_id":1,"start_date":"2025-02-31","end_date":"2025-03-02"}`,
			http.StatusUnprocessableEntity, "invalid date format",
		},
		{
			"year too small",
			`{"leave_type_id":1,"start_date":"2019-06-01","end_date":"2019-06-03"}`,
			http.StatusUnprocessableEntity, "date out of range",
		},
		{
			"year too large",
			`{"leave_type_id":1,"start_date":"2101-06-01","end_date":"2101-06-03"}`,
			http.StatusUnprocessableEntity, "date out of range",
		},
		{
			"end before start",
			`{"leave_type_id":1,"start_date":"2025-06-10","end_date":"2025-06-01"}`,
			http.StatusUnprocessableEntity, "end date must not be before start date",
		},
		{
			"span beyond a year",
			`{"leave_type_id":1,"start_date":"2025-01-01","end_date":"2026-06-01"}`,
			http.StatusUnprocessableEntity, "leave request must not span more than 365 days",
		},
		{
			"zero hours",
			`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03","hours":0}`,
			http.StatusUnprocessableEntity, "hours must be between 0 and 24",
		},
		{
			"too many hours",
			`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03","hours":25}`,
			http.StatusUnprocessableEntity, "hours must be between 0 and 24",
		},
		{
			"oversized notes",
			`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03","notes":"` + strings.Repeat("x", 501) + `"}`,
			http.StatusUnprocessableEntity, "notes must not exceed 500 characters",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, mock := newLeaveHandler(t)
			mock.ExpectQuery(`SELECT id, name, color`).
				WithArgs(uint64(1)).
				WillReturnRows(leaveTypeRows())

			c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests", tc.body, 5, "user")
			if err := h.CreateRequest(c); err != nil {
				t.Fatalf("handler: %v", err)
			}
			wantError(t, rec, tc.status, tc.msg)
		})
	}
}

func TestCreateRequestSuccessDefaultsHours(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(1)).
		WillReturnRows(leaveTypeRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM leave_requests`).
		WithArgs(uint64(5), "2025-06-03", "2025-06-01").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO leave_requests`).
		WithArgs(uint64(5), uint64(1), "2025-06-01", "2025-06-03", 3, 8.0, "pending", "").
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectCommit()

	c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s), want 201", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
	if body["request_id"] != float64(42) {
		t.Errorf("request_id = %v, want 42", body["request_id"])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// The notes cap counts characters, not bytes: 500 accented letters are
// 1000 UTF-8 bytes and must still pass.
func TestCreateRequestNotesCountedInRunes(t *testing.T) {
	notes := strings.Repeat("è", 500)

	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(1)).
		WillReturnRows(leaveTypeRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM leave_requests`).
		WithArgs(uint64(5), "2025-06-03", "2025-06-01").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO leave_requests`).
		WithArgs(uint64(5), uint64(1), "2025-06-01", "2025-06-03", 3, 8.0, "pending", notes).
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectCommit()

	c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03","notes":"`+notes+`"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d (%s), want 201", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}

	h, mock = newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(1)).
		WillReturnRows(leaveTypeRows())
	c, rec = newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03","notes":"`+strings.Repeat("è", 501)+`"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusUnprocessableEntity, "notes must not exceed 500 characters")
}

func TestCreateRequestOverlapConflict(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(1)).
		WillReturnRows(leaveTypeRows())
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM leave_requests`).
		WithArgs(uint64(5), "2025-06-03", "2025-06-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectRollback()

	c, rec := newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusConflict, "you already have a leave request for these dates")
}

// Non-admin callers are pinned to their own requests: the user_id query
// parameter is ignored and the SQL filter carries the caller's id.
func TestGetRequestsScopesNonAdminToSelf(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`FROM leave_requests r`).
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "leave_type_id", "type_name", "color",
			"start_date", "end_date", "days", "hours", "status",
			"notes", "reviewed_by", "reviewed_at", "created_at",
		}))

	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/requests?user_id=99", "", 5, "user")
	if err := h.GetRequests(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("filter not scoped to caller: %v", err)
	}
}

func TestGetRequestsAdminMayFilterByUser(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`FROM leave_requests r`).
		WithArgs(uint64(99), "pending").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "name", "leave_type_id", "type_name", "color",
			"start_date", "end_date", "days", "hours", "status",
			"notes", "reviewed_by", "reviewed_at", "created_at",
		}))

	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/requests?user_id=99&status=pending", "", 5, "admin")
	if err := h.GetRequests(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetRequestsRejectsUnknownStatus(t *testing.T) {
	h, _ := newLeaveHandler(t)
	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/requests?status=bogus", "", 5, "user")
	if err := h.GetRequests(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusBadRequest, "invalid status")
}

// requires_approval round-trips through the update: an explicit value
// is written, an omitted one keeps whatever is stored.
func TestUpdateTypePersistsApprovalFlag(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectExec(`UPDATE leave_types SET name=\?, color=\?, requires_approval=\?, days_per_year=\?`).
		WithArgs("Ferie", "#22c55e", false, 20, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newRequestCtx(t, http.MethodPut, "/v1/leaves/types/1",
		`{"name":"Ferie","color":"#22c55e","requires_approval":false,"days_per_year":20}`, 9, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateType(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateTypeKeepsApprovalFlagWhenOmitted(t *testing.T) {
	h, mock := newLeaveHandler(t)
	mock.ExpectQuery(`SELECT id, name, color`).
		WithArgs(uint64(1)).
		WillReturnRows(leaveTypeRows()) // stored flag is true
	mock.ExpectExec(`UPDATE leave_types SET name=\?, color=\?, requires_approval=\?, days_per_year=\?`).
		WithArgs("Ferie", "#22c55e", true, 20, uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newRequestCtx(t, http.MethodPut, "/v1/leaves/types/1",
		`{"name":"Ferie","color":"#22c55e","days_per_year":20}`, 9, "admin")
	c.SetParamNames("id")
	c.SetParamValues("1")
	if err := h.UpdateType(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s), want 200", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// Without a database the read surfaces answer with empty collections
// and writes fail loudly.
func TestDegradedMode(t *testing.T) {
	h := NewLeaveHandler(nil, nil, nil)

	c, rec := newRequestCtx(t, http.MethodGet, "/v1/leaves/types", "", 0, "")
	if err := h.GetTypes(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("GetTypes = %d %q, want 200 []", rec.Code, rec.Body.String())
	}

	c, rec = newRequestCtx(t, http.MethodPost, "/v1/leaves/requests",
		`{"leave_type_id":1,"start_date":"2025-06-01","end_date":"2025-06-03"}`, 5, "user")
	if err := h.CreateRequest(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	wantError(t, rec, http.StatusServiceUnavailable, "database not available")
}
