package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/anthera/powerleave/internal/model"
)

// LeaveRequestRepo provides CRUD and aggregation queries over the
// leave_requests table.  Creation runs the overlap check and the insert
// in a single transaction so that two concurrent submissions for the
// same user cannot both pass the check before either commits.
type LeaveRequestRepo struct{ db *sql.DB }

func NewLeaveRequestRepo(db *sql.DB) *LeaveRequestRepo { return &LeaveRequestRepo{db: db} }

// DB exposes the underlying handle so handlers can start transactions
// that span this repository and LeaveBalanceRepo.
func (r *LeaveRequestRepo) DB() *sql.DB { return r.db }

var ErrRequestNotFound = errors.New("leave request not found")

// RequestFilter restricts List to a user and/or a status.  The zero
// value means unfiltered.  Role scoping happens at the authorization
// boundary: handlers force UserID to the caller for non-admins and
// never thread raw query parameters through to SQL.
type RequestFilter struct {
	UserID uint64 // 0 = all users (admin only)
	Status string // "" = any status
}

// RequestDetail is a leave request joined with the requester's and
// leave type's display fields for list and calendar responses.
type RequestDetail struct {
	ID             uint64  `json:"id"`
	UserID         uint64  `json:"user_id"`
	UserName       string  `json:"user_name"`
	LeaveTypeID    uint64  `json:"leave_type_id"`
	LeaveTypeName  string  `json:"leave_type_name"`
	LeaveTypeColor string  `json:"leave_type_color"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Days           int     `json:"days"`
	Hours          float64 `json:"hours"`
	Status         string  `json:"status"`
	Notes          string  `json:"notes,omitempty"`
	ReviewedBy     *uint64 `json:"reviewed_by,omitempty"`
	ReviewedAt     *string `json:"reviewed_at,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

const detailSelect = `SELECT r.id, r.user_id, u.name, r.leave_type_id, t.name, t.color,
       r.start_date, r.end_date, r.days, r.hours, r.status, r.notes,
       r.reviewed_by, r.reviewed_at, r.created_at
FROM leave_requests r
JOIN users u ON u.id = r.user_id
JOIN leave_types t ON t.id = r.leave_type_id`

// Create inserts a new request after verifying that no pending or
// approved request of the same user overlaps the range.  The check and
// the insert share one transaction; the SELECT locks matching rows so a
// concurrent creation for the same user serializes behind it.  On
// success the generated ID is stored on req.
func (r *LeaveRequestRepo) Create(ctx context.Context, req *model.LeaveRequest) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Inclusive ranges overlap iff start1 <= end2 AND start2 <= end1;
	// the stored YYYY-MM-DD strings compare correctly as strings.
	const overlapQ = `SELECT id FROM leave_requests
	                  WHERE user_id = ? AND status <> 'rejected'
	                    AND start_date <= ? AND end_date >= ?
	                  LIMIT 1 FOR UPDATE`
	var blocking uint64
	err = tx.QueryRowContext(ctx, overlapQ, req.UserID, req.EndDate, req.StartDate).Scan(&blocking)
	if err == nil {
		return 0, ErrOverlap
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	const insertQ = `INSERT INTO leave_requests
	                 (user_id, leave_type_id, start_date, end_date, days, hours, status, notes)
	                 VALUES (?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, insertQ,
		req.UserID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.Days, req.Hours, model.StatusPending, req.Notes)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	req.ID = uint64(id)
	req.Status = model.StatusPending
	return req.ID, nil
}

// InsertTx inserts a request with an explicit status inside an existing
// transaction, bypassing the overlap check.  Used by closure auto-leave
// generation where company-wide rows are created in bulk; ClosureID
// links the row back to its closure.
func (r *LeaveRequestRepo) InsertTx(ctx context.Context, tx *sql.Tx, req *model.LeaveRequest) error {
	const q = `INSERT INTO leave_requests
	           (user_id, leave_type_id, start_date, end_date, days, hours, status, notes, closure_id)
	           VALUES (?,?,?,?,?,?,?,?,?)`
	res, err := tx.ExecContext(ctx, q,
		req.UserID, req.LeaveTypeID, req.StartDate, req.EndDate,
		req.Days, req.Hours, req.Status, req.Notes, req.ClosureID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	req.ID = uint64(id)
	return nil
}

// GetClosureLeaveTx loads the leave request that auto_leave generated
// for the given closure and user, locking it.  Returns
// ErrRequestNotFound when none was generated (the user was on leave
// already, or the closure had no auto_leave).
func (r *LeaveRequestRepo) GetClosureLeaveTx(ctx context.Context, tx *sql.Tx, closureID, userID uint64) (model.LeaveRequest, error) {
	const q = `SELECT id, user_id, leave_type_id, start_date, end_date, days, hours, status
	           FROM leave_requests WHERE closure_id = ? AND user_id = ? LIMIT 1 FOR UPDATE`
	var req model.LeaveRequest
	err := tx.QueryRowContext(ctx, q, closureID, userID).Scan(&req.ID, &req.UserID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.Days, &req.Hours, &req.Status)
	if err == sql.ErrNoRows {
		return req, ErrRequestNotFound
	}
	if err != nil {
		return req, err
	}
	req.ClosureID = &closureID
	return req, nil
}

// DeleteTx removes a request inside an existing transaction.
func (r *LeaveRequestRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, "DELETE FROM leave_requests WHERE id=?", id)
	return err
}

// HasOverlapTx reports whether the user already has a pending or
// approved request sharing a day with [start, end], within an existing
// transaction.
func (r *LeaveRequestRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, userID uint64, start, end string) (bool, error) {
	const q = `SELECT id FROM leave_requests
	           WHERE user_id = ? AND status <> 'rejected'
	             AND start_date <= ? AND end_date >= ?
	           LIMIT 1`
	var id uint64
	err := tx.QueryRowContext(ctx, q, userID, end, start).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns requests matching the filter, newest first.
func (r *LeaveRequestRepo) List(ctx context.Context, f RequestFilter) ([]RequestDetail, error) {
	q := detailSelect
	where := ""
	args := make([]interface{}, 0, 2)
	if f.UserID != 0 {
		where += " r.user_id = ?"
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		if where != "" {
			where += " AND"
		}
		where += " r.status = ?"
		args = append(args, f.Status)
	}
	if where != "" {
		q += " WHERE" + where
	}
	q += " ORDER BY r.created_at DESC, r.id DESC"
	return r.queryDetails(ctx, q, args...)
}

// ListByMonth returns pending and approved requests whose range shares
// at least one day with the given month, for calendar rendering.
func (r *LeaveRequestRepo) ListByMonth(ctx context.Context, year, month int) ([]RequestDetail, error) {
	first, last := monthBounds(year, month)
	q := detailSelect + `
	    WHERE r.status IN ('pending','approved')
	      AND r.start_date <= ? AND r.end_date >= ?
	    ORDER BY r.start_date, r.id`
	return r.queryDetails(ctx, q, last, first)
}

func (r *LeaveRequestRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]RequestDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]RequestDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func scanDetail(rows *sql.Rows) (RequestDetail, error) {
	var (
		d          RequestDetail
		notes      sql.NullString
		reviewedBy sql.NullInt64
		reviewedAt sql.NullTime
		createdAt  sql.NullTime
	)
	err := rows.Scan(&d.ID, &d.UserID, &d.UserName, &d.LeaveTypeID, &d.LeaveTypeName,
		&d.LeaveTypeColor, &d.StartDate, &d.EndDate, &d.Days, &d.Hours, &d.Status,
		&notes, &reviewedBy, &reviewedAt, &createdAt)
	if err != nil {
		return d, err
	}
	if notes.Valid {
		d.Notes = notes.String
	}
	if reviewedBy.Valid {
		rb := uint64(reviewedBy.Int64)
		d.ReviewedBy = &rb
	}
	if reviewedAt.Valid {
		iso := reviewedAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
		d.ReviewedAt = &iso
	}
	if createdAt.Valid {
		d.CreatedAt = createdAt.Time.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return d, nil
}

// GetByIDTx loads a request within a transaction, locking the row for
// the duration of the review.  Returns ErrRequestNotFound when no such
// request exists.
func (r *LeaveRequestRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.LeaveRequest, error) {
	const q = `SELECT id, user_id, leave_type_id, start_date, end_date, days, hours, status, notes
	           FROM leave_requests WHERE id = ? FOR UPDATE`
	var (
		req   model.LeaveRequest
		notes sql.NullString
	)
	err := tx.QueryRowContext(ctx, q, id).Scan(&req.ID, &req.UserID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.Days, &req.Hours, &req.Status, &notes)
	if err == sql.ErrNoRows {
		return req, ErrRequestNotFound
	}
	if err != nil {
		return req, err
	}
	if notes.Valid {
		req.Notes = notes.String
	}
	return req, nil
}

// UpdateStatusTx records the review outcome on the request row.
func (r *LeaveRequestRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status string, reviewerID uint64) error {
	const q = `UPDATE leave_requests SET status=?, reviewed_by=?, reviewed_at=NOW() WHERE id=?`
	_, err := tx.ExecContext(ctx, q, status, reviewerID, id)
	return err
}

// CountByStatusYear counts requests in the given status whose start
// date falls in the given calendar year.
func (r *LeaveRequestRepo) CountByStatusYear(ctx context.Context, status string, year int) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leave_requests WHERE status=? AND start_date LIKE ?",
		status, fmt.Sprintf("%04d-%%", year)).Scan(&n)
	return n, err
}

// CountApprovedOnDate counts approved requests whose inclusive range
// contains the given YYYY-MM-DD date.
func (r *LeaveRequestRepo) CountApprovedOnDate(ctx context.Context, date string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM leave_requests WHERE status='approved' AND start_date <= ? AND end_date >= ?",
		date, date).Scan(&n)
	return n, err
}

// SumApprovedDaysYear sums the day spans of approved requests starting
// in the given year.
func (r *LeaveRequestRepo) SumApprovedDaysYear(ctx context.Context, year int) (int, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		"SELECT SUM(days) FROM leave_requests WHERE status='approved' AND start_date LIKE ?",
		fmt.Sprintf("%04d-%%", year)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

// monthBounds returns the first and last day of a month as YYYY-MM-DD
// strings.
func monthBounds(year, month int) (string, string) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format("2006-01-02"), last.Format("2006-01-02")
}
