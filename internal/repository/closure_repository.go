package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/anthera/powerleave/internal/model"
)

// ClosureRepo provides access to the company_closures table.
type ClosureRepo struct{ DB *sql.DB }

func NewClosureRepo(db *sql.DB) *ClosureRepo { return &ClosureRepo{DB: db} }

var ErrClosureNotFound = errors.New("closure not found")

const closureSelect = `SELECT id, start_date, end_date, reason, type, auto_leave, allow_exceptions, created_by, created_at
FROM company_closures`

// ListByYear returns all closures starting in the given year, ordered
// by start date.  year 0 lists everything.
func (r *ClosureRepo) ListByYear(ctx context.Context, year int) ([]model.CompanyClosure, error) {
	q := closureSelect
	args := make([]interface{}, 0, 1)
	if year != 0 {
		q += " WHERE start_date LIKE ?"
		args = append(args, fmt.Sprintf("%04d-%%", year))
	}
	q += " ORDER BY start_date, id"
	return r.query(ctx, q, args...)
}

// GetByID returns a single closure or ErrClosureNotFound.
func (r *ClosureRepo) GetByID(ctx context.Context, id uint64) (model.CompanyClosure, error) {
	q := closureSelect + " WHERE id = ? LIMIT 1"
	var c model.CompanyClosure
	err := r.DB.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.StartDate, &c.EndDate, &c.Reason, &c.Type,
		&c.AutoLeave, &c.AllowExceptions, &c.CreatedBy, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return c, ErrClosureNotFound
	}
	return c, err
}

// ListByMonth returns closures overlapping the given month.  The same
// inclusive-range comparison used for leave requests applies.
func (r *ClosureRepo) ListByMonth(ctx context.Context, year, month int) ([]model.CompanyClosure, error) {
	first, last := monthBounds(year, month)
	q := closureSelect + " WHERE start_date <= ? AND end_date >= ? ORDER BY start_date, id"
	return r.query(ctx, q, last, first)
}

func (r *ClosureRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.CompanyClosure, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	closures := make([]model.CompanyClosure, 0)
	for rows.Next() {
		var c model.CompanyClosure
		if err := rows.Scan(&c.ID, &c.StartDate, &c.EndDate, &c.Reason, &c.Type,
			&c.AutoLeave, &c.AllowExceptions, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}
	return closures, rows.Err()
}

// Create inserts a closure and returns its ID.
func (r *ClosureRepo) Create(ctx context.Context, c *model.CompanyClosure) (uint64, error) {
	res, err := r.DB.ExecContext(ctx, closureInsert,
		c.StartDate, c.EndDate, c.Reason, c.Type, c.AutoLeave, c.AllowExceptions, c.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	return c.ID, nil
}

const closureInsert = `INSERT INTO company_closures
(start_date, end_date, reason, type, auto_leave, allow_exceptions, created_by)
VALUES (?,?,?,?,?,?,?)`

// CreateTx is Create inside an existing transaction, used when closure
// creation also generates leave requests and both must land together.
func (r *ClosureRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.CompanyClosure) (uint64, error) {
	res, err := tx.ExecContext(ctx, closureInsert,
		c.StartDate, c.EndDate, c.Reason, c.Type, c.AutoLeave, c.AllowExceptions, c.CreatedBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	c.ID = uint64(id)
	return c.ID, nil
}

// Delete removes a closure.
func (r *ClosureRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM company_closures WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClosureNotFound
	}
	return nil
}
