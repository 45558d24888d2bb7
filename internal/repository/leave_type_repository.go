package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/anthera/powerleave/internal/model"
)

// LeaveTypeRepo provides CRUD operations over the leave_types table.
type LeaveTypeRepo struct{ DB *sql.DB }

func NewLeaveTypeRepo(db *sql.DB) *LeaveTypeRepo { return &LeaveTypeRepo{DB: db} }

var ErrLeaveTypeNotFound = errors.New("leave type not found")

// List returns all leave types ordered by id.
func (r *LeaveTypeRepo) List(ctx context.Context) ([]model.LeaveType, error) {
	const q = `SELECT id, name, color, requires_approval, days_per_year, created_at
	           FROM leave_types ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make([]model.LeaveType, 0)
	for rows.Next() {
		var t model.LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.RequiresApproval, &t.DaysPerYear, &t.CreatedAt); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// GetByID returns a single leave type or ErrLeaveTypeNotFound.
func (r *LeaveTypeRepo) GetByID(ctx context.Context, id uint64) (model.LeaveType, error) {
	const q = `SELECT id, name, color, requires_approval, days_per_year, created_at
	           FROM leave_types WHERE id = ? LIMIT 1`
	var t model.LeaveType
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Color, &t.RequiresApproval, &t.DaysPerYear, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return t, ErrLeaveTypeNotFound
	}
	return t, err
}

// Create inserts a leave type and returns its ID.
func (r *LeaveTypeRepo) Create(ctx context.Context, name, color string, requiresApproval bool, daysPerYear int) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO leave_types (name, color, requires_approval, days_per_year) VALUES (?,?,?,?)",
		name, color, requiresApproval, daysPerYear)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites the mutable fields of a leave type.
func (r *LeaveTypeRepo) Update(ctx context.Context, id uint64, name, color string, requiresApproval bool, daysPerYear int) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE leave_types SET name=?, color=?, requires_approval=?, days_per_year=? WHERE id=?",
		name, color, requiresApproval, daysPerYear, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if err := r.DB.QueryRowContext(ctx, "SELECT id FROM leave_types WHERE id=? LIMIT 1", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrLeaveTypeNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a leave type.  The restrict foreign keys on
// leave_requests and leave_balances block deletion while rows still
// reference the type; MySQL reports that as error 1451, which is
// surfaced to handlers as ErrConflict.
func (r *LeaveTypeRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM leave_types WHERE id=?", id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1451") {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeaveTypeNotFound
	}
	return nil
}
