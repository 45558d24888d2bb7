package repository

import (
	"context"
	"database/sql"
)

// LeaveBalanceRepo provides access to the leave_balances table.  Rows
// are keyed by the unique (user_id, leave_type_id, year) index; accrual
// on approval upserts against that key.
type LeaveBalanceRepo struct{ DB *sql.DB }

func NewLeaveBalanceRepo(db *sql.DB) *LeaveBalanceRepo { return &LeaveBalanceRepo{DB: db} }

// BalanceDetail is a balance row enriched with leave type display
// information, returned to the balance and usage endpoints.
type BalanceDetail struct {
	ID             uint64  `json:"id"`
	UserID         uint64  `json:"user_id"`
	UserName       string  `json:"user_name"`
	LeaveTypeID    uint64  `json:"leave_type_id"`
	LeaveTypeName  string  `json:"leave_type_name"`
	LeaveTypeColor string  `json:"leave_type_color"`
	Year           int     `json:"year"`
	TotalDays      int     `json:"total_days"`
	UsedDays       float64 `json:"used_days"`
	RemainingDays  float64 `json:"remaining_days"`
}

// ListForUserYear returns the caller's balances for one year, joined
// with type names and colors.  RemainingDays is derived, not stored.
func (r *LeaveBalanceRepo) ListForUserYear(ctx context.Context, userID uint64, year int) ([]BalanceDetail, error) {
	const q = `SELECT b.id, b.user_id, u.name, b.leave_type_id, t.name, t.color,
	                  b.year, b.total_days, b.used_days
	           FROM leave_balances b
	           JOIN users u ON u.id = b.user_id
	           JOIN leave_types t ON t.id = b.leave_type_id
	           WHERE b.user_id = ? AND b.year = ?
	           ORDER BY b.leave_type_id`
	return r.queryDetails(ctx, q, userID, year)
}

// UsageSummary returns one row per (user, leave type) balance for the
// given year, optionally restricted to a single leave type.  It backs
// the reporting endpoint whose output the client exports as CSV.
func (r *LeaveBalanceRepo) UsageSummary(ctx context.Context, year int, leaveTypeID uint64) ([]BalanceDetail, error) {
	q := `SELECT b.id, b.user_id, u.name, b.leave_type_id, t.name, t.color,
	             b.year, b.total_days, b.used_days
	      FROM leave_balances b
	      JOIN users u ON u.id = b.user_id
	      JOIN leave_types t ON t.id = b.leave_type_id
	      WHERE b.year = ?`
	args := []interface{}{year}
	if leaveTypeID != 0 {
		q += ` AND b.leave_type_id = ?`
		args = append(args, leaveTypeID)
	}
	q += ` ORDER BY u.name, b.leave_type_id`
	return r.queryDetails(ctx, q, args...)
}

func (r *LeaveBalanceRepo) queryDetails(ctx context.Context, q string, args ...interface{}) ([]BalanceDetail, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BalanceDetail, 0)
	for rows.Next() {
		var d BalanceDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.UserName, &d.LeaveTypeID, &d.LeaveTypeName,
			&d.LeaveTypeColor, &d.Year, &d.TotalDays, &d.UsedDays); err != nil {
			return nil, err
		}
		d.RemainingDays = float64(d.TotalDays) - d.UsedDays
		details = append(details, d)
	}
	return details, rows.Err()
}

// SumTotalDaysForYear returns the sum of total_days across all balance
// rows of a year.  The dashboard divides used days by this figure to
// compute the utilization rate.
func (r *LeaveBalanceRepo) SumTotalDaysForYear(ctx context.Context, year int) (int, error) {
	var total sql.NullInt64
	err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(total_days) FROM leave_balances WHERE year=?", year).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

// AccrueTx adds delta to the (user, type, year) balance's used days
// within an existing transaction, creating the row when it does not
// exist yet.  A freshly created row takes its total_days from the leave
// type's annual allotment.
func (r *LeaveBalanceRepo) AccrueTx(ctx context.Context, tx *sql.Tx, userID, leaveTypeID uint64, year int, delta float64) error {
	const q = `INSERT INTO leave_balances (user_id, leave_type_id, year, total_days, used_days)
	           SELECT ?, t.id, ?, t.days_per_year, ?
	           FROM leave_types t WHERE t.id = ?
	           ON DUPLICATE KEY UPDATE used_days = used_days + VALUES(used_days)`
	_, err := tx.ExecContext(ctx, q, userID, year, delta, leaveTypeID)
	return err
}

// InitForUser seeds a zero-usage balance row for every leave type for
// the given user and year.  Existing rows are left untouched, so the
// call is safe to repeat.
func (r *LeaveBalanceRepo) InitForUser(ctx context.Context, userID uint64, year int) error {
	const q = `INSERT INTO leave_balances (user_id, leave_type_id, year, total_days, used_days)
	           SELECT ?, t.id, ?, t.days_per_year, 0
	           FROM leave_types t
	           ON DUPLICATE KEY UPDATE leave_balances.id = leave_balances.id`
	_, err := r.DB.ExecContext(ctx, q, userID, year)
	return err
}
