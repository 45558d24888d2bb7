package model

import "time"

// Closure type values: a statutory holiday or a discretionary shutdown.
const (
	ClosureHoliday  = "holiday"
	ClosureShutdown = "shutdown"
)

// CompanyClosure is an organization-wide non-working period stored in
// the `company_closures` table.  StartDate and EndDate use the same
// inclusive YYYY-MM-DD convention as leave requests; a single-day
// closure has StartDate == EndDate.
//
// Fields:
//  ID              – primary key identifier.
//  StartDate       – first closed day (YYYY-MM-DD).
//  EndDate         – last closed day, inclusive.
//  Reason          – human-readable label (e.g. "Natale", "Ferragosto").
//  Type            – holiday | shutdown.
//  AutoLeave       – when set, approved leave requests were generated for
//                    all staff covering the closure range.
//  AllowExceptions – whether employees may request to work through it.
type CompanyClosure struct {
	ID              uint64    // company_closures.id
	StartDate       string    // company_closures.start_date
	EndDate         string    // company_closures.end_date
	Reason          string    // company_closures.reason
	Type            string    // company_closures.type
	AutoLeave       bool      // company_closures.auto_leave
	AllowExceptions bool      // company_closures.allow_exceptions
	CreatedBy       uint64    // company_closures.created_by
	CreatedAt       time.Time // company_closures.created_at
}

// ClosureException is an employee's request to work through a closure,
// stored in the `closure_exceptions` table.  Only closures created with
// AllowExceptions accept them.  Approving an exception removes the
// leave request that auto_leave generated for that user, giving the
// charged days back.
//
// Fields:
//  ID         – primary key identifier.
//  ClosureID  – the closure being opted out of.
//  UserID     – employee asking to work.
//  Reason     – free-form motivation.
//  Status     – pending | approved | rejected.
//  ReviewedBy – admin who decided (null while pending).
//  ReviewedAt – when the decision happened (null while pending).
type ClosureException struct {
	ID         uint64     // closure_exceptions.id
	ClosureID  uint64     // closure_exceptions.closure_id
	UserID     uint64     // closure_exceptions.user_id
	Reason     string     // closure_exceptions.reason
	Status     string     // closure_exceptions.status
	ReviewedBy *uint64    // closure_exceptions.reviewed_by (nullable)
	ReviewedAt *time.Time // closure_exceptions.reviewed_at (nullable)
	CreatedAt  time.Time  // closure_exceptions.created_at
}
