package queue

// LeaveReviewedEvent is published when an admin approves or rejects a
// leave request.  It carries enough information for downstream
// consumers to notify the requester or feed analytics without querying
// the primary database.
type LeaveReviewedEvent struct {
	RequestID     uint64  `json:"request_id"`
	UserID        uint64  `json:"user_id"`
	ReviewerID    uint64  `json:"reviewer_id"`
	LeaveTypeID   uint64  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Days          int     `json:"days"`
	Hours         float64 `json:"hours"`
	Status        string  `json:"status"`
	ReviewedAt    string  `json:"reviewed_at"`
}
