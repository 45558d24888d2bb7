package model

import "time"

// Announcement is a bulletin-board post shown on the dashboard.
type Announcement struct {
	ID        uint64    // announcements.id
	Title     string    // announcements.title
	Content   string    // announcements.content
	Type      string    // announcements.type: info | warning | success
	CreatedBy uint64    // announcements.created_by
	CreatedAt time.Time // announcements.created_at
	UpdatedAt time.Time // announcements.updated_at
}
