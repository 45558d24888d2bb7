package handler

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

// newTestDB returns a sqlmock-backed *sql.DB so handlers run against
// the real repository code with scripted SQL results.
func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newRequestCtx builds an echo context carrying the given JSON body and
// auth claims.  user_id is set as float64 because that is how JWT
// claims arrive after the JSON round-trip.
func newRequestCtx(t *testing.T, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID))
		c.Set("role", role)
	}
	return c, rec
}

// decodeBody unmarshals the recorded JSON response.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// wantError asserts status code and error message.
func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, msg string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d (%s), want %d", rec.Code, rec.Body.String(), status)
	}
	if got := decodeBody(t, rec)["error"]; got != msg {
		t.Errorf("error = %q, want %q", got, msg)
	}
}

// leaveTypeRows returns a one-row result for the leave type lookup.
func leaveTypeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "color", "requires_approval", "days_per_year", "created_at"}).
		AddRow(1, "Ferie", "#22c55e", true, 26, time.Now())
}
