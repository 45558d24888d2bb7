package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// AnnouncementRepo provides access to the announcements table.
type AnnouncementRepo struct{ DB *sql.DB }

func NewAnnouncementRepo(db *sql.DB) *AnnouncementRepo { return &AnnouncementRepo{DB: db} }

var ErrAnnouncementNotFound = errors.New("announcement not found")

// AnnouncementDetail is an announcement joined with its author's name.
type AnnouncementDetail struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	Type          string    `json:"type"`
	CreatedBy     uint64    `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// List returns the newest announcements first, up to limit.
func (r *AnnouncementRepo) List(ctx context.Context, limit int) ([]AnnouncementDetail, error) {
	const q = `SELECT a.id, a.title, a.content, a.type, a.created_by, u.name, a.created_at
	           FROM announcements a
	           JOIN users u ON u.id = a.created_by
	           ORDER BY a.created_at DESC, a.id DESC
	           LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]AnnouncementDetail, 0)
	for rows.Next() {
		var a AnnouncementDetail
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.Type, &a.CreatedBy, &a.CreatedByName, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Create inserts an announcement and returns its ID.
func (r *AnnouncementRepo) Create(ctx context.Context, title, content, typ string, createdBy uint64) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO announcements (title, content, type, created_by) VALUES (?,?,?,?)",
		title, content, typ, createdBy)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update overwrites title, content and type of an announcement.
func (r *AnnouncementRepo) Update(ctx context.Context, id uint64, title, content, typ string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE announcements SET title=?, content=?, type=? WHERE id=?",
		title, content, typ, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if err := r.DB.QueryRowContext(ctx, "SELECT id FROM announcements WHERE id=? LIMIT 1", id).Scan(&exists); err == sql.ErrNoRows {
			return ErrAnnouncementNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM announcements WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAnnouncementNotFound
	}
	return nil
}
