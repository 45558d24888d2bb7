package model

import "time"

// Message is a user-to-user direct message with a read flag.  Review
// notifications produced by the queue consumer are stored here too,
// sent from the reviewing admin to the requester.
type Message struct {
	ID         uint64    // messages.id
	FromUserID uint64    // messages.from_user_id
	ToUserID   uint64    // messages.to_user_id
	Content    string    // messages.content
	IsRead     bool      // messages.is_read
	CreatedAt  time.Time // messages.created_at
}
