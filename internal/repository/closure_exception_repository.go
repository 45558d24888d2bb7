package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/anthera/powerleave/internal/model"
)

// ClosureExceptionRepo provides access to the closure_exceptions table.
type ClosureExceptionRepo struct{ db *sql.DB }

func NewClosureExceptionRepo(db *sql.DB) *ClosureExceptionRepo { return &ClosureExceptionRepo{db: db} }

// DB exposes the underlying handle so handlers can run the review and
// the generated-request cleanup in one transaction.
func (r *ClosureExceptionRepo) DB() *sql.DB { return r.db }

var ErrExceptionNotFound = errors.New("closure exception not found")

// ExceptionDetail is a closure exception joined with the requester's
// name and the closure's display fields for list responses.
type ExceptionDetail struct {
	ID            uint64  `json:"id"`
	ClosureID     uint64  `json:"closure_id"`
	ClosureReason string  `json:"closure_reason"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	UserID        uint64  `json:"user_id"`
	UserName      string  `json:"user_name"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	ReviewedBy    *uint64 `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// Create inserts a pending exception and returns its ID.
func (r *ClosureExceptionRepo) Create(ctx context.Context, closureID, userID uint64, reason string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO closure_exceptions (closure_id, user_id, reason, status) VALUES (?,?,?,?)",
		closureID, userID, reason, model.StatusPending)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// List returns exceptions newest first.  userID 0 lists everyone's
// (admin view); otherwise only the given user's.
func (r *ClosureExceptionRepo) List(ctx context.Context, userID uint64, limit int) ([]ExceptionDetail, error) {
	q := `SELECT e.id, e.closure_id, c.reason, c.start_date, c.end_date,
	       e.user_id, u.name, e.reason, e.status, e.reviewed_by, e.reviewed_at, e.created_at
	FROM closure_exceptions e
	JOIN company_closures c ON c.id = e.closure_id
	JOIN users u ON u.id = e.user_id`
	args := make([]interface{}, 0, 2)
	if userID != 0 {
		q += " WHERE e.user_id = ?"
		args = append(args, userID)
	}
	q += " ORDER BY e.created_at DESC, e.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]ExceptionDetail, 0)
	for rows.Next() {
		var (
			d          ExceptionDetail
			reviewedBy sql.NullInt64
			reviewedAt sql.NullTime
			createdAt  sql.NullTime
		)
		err := rows.Scan(&d.ID, &d.ClosureID, &d.ClosureReason, &d.StartDate, &d.EndDate,
			&d.UserID, &d.UserName, &d.Reason, &d.Status, &reviewedBy, &reviewedAt, &createdAt)
		if err != nil {
			return nil, err
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
		details = append(details, d)
	}
	return details, rows.Err()
}

// GetByIDTx loads an exception within a transaction, locking the row
// for the duration of the review.  Returns ErrExceptionNotFound when no
// such exception exists.
func (r *ClosureExceptionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.ClosureException, error) {
	const q = `SELECT id, closure_id, user_id, reason, status
	           FROM closure_exceptions WHERE id = ? FOR UPDATE`
	var e model.ClosureException
	err := tx.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.ClosureID, &e.UserID, &e.Reason, &e.Status)
	if err == sql.ErrNoRows {
		return e, ErrExceptionNotFound
	}
	return e, err
}

// ReviewTx records the review outcome on the exception row.
func (r *ClosureExceptionRepo) ReviewTx(ctx context.Context, tx *sql.Tx, id uint64, status string, reviewerID uint64) error {
	const q = `UPDATE closure_exceptions SET status=?, reviewed_by=?, reviewed_at=NOW() WHERE id=?`
	_, err := tx.ExecContext(ctx, q, status, reviewerID, id)
	return err
}
