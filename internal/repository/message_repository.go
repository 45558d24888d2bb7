package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// MessageRepo provides access to the messages table.  Besides direct
// user-to-user messages it stores the review notifications written by
// the queue consumer.
type MessageRepo struct{ DB *sql.DB }

func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{DB: db} }

var ErrMessageNotFound = errors.New("message not found")

// MessageDetail is a message joined with the sender's display name.
type MessageDetail struct {
	ID           uint64    `json:"id"`
	FromUserID   uint64    `json:"from_user_id"`
	FromUserName string    `json:"from_user_name"`
	ToUserID     uint64    `json:"to_user_id"`
	Content      string    `json:"content"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListForUser returns the user's inbox, newest first, up to limit.
func (r *MessageRepo) ListForUser(ctx context.Context, userID uint64, limit int) ([]MessageDetail, error) {
	const q = `SELECT m.id, m.from_user_id, u.name, m.to_user_id, m.content, m.is_read, m.created_at
	           FROM messages m
	           JOIN users u ON u.id = m.from_user_id
	           WHERE m.to_user_id = ?
	           ORDER BY m.created_at DESC, m.id DESC
	           LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := make([]MessageDetail, 0)
	for rows.Next() {
		var m MessageDetail
		if err := rows.Scan(&m.ID, &m.FromUserID, &m.FromUserName, &m.ToUserID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Create inserts a message and returns its ID.
func (r *MessageRepo) Create(ctx context.Context, fromUserID, toUserID uint64, content string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO messages (from_user_id, to_user_id, content) VALUES (?,?,?)",
		fromUserID, toUserID, content)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// MarkRead flags a message as read, restricted to its recipient.
func (r *MessageRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE messages SET is_read=1 WHERE id=? AND to_user_id=?",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}
