package model

import "time"

// Leave request status values.  A request is created as pending and is
// moved to approved or rejected by an admin through the review endpoint.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// LeaveType is a named category of absence (e.g. "Ferie", "Permesso",
// "Malattia") stored in the `leave_types` table.
//
// Fields:
//  ID               – primary key identifier.
//  Name             – display name of the category.
//  Color            – hex color used by the calendar UI.
//  RequiresApproval – whether requests of this type need admin review.
//  DaysPerYear      – default annual allotment granted per user.
//  CreatedAt        – timestamp of creation.
type LeaveType struct {
	ID               uint64    // leave_types.id
	Name             string    // leave_types.name
	Color            string    // leave_types.color
	RequiresApproval bool      // leave_types.requires_approval
	DaysPerYear      int       // leave_types.days_per_year
	CreatedAt        time.Time // leave_types.created_at
}

// LeaveBalance tracks the day allotment for a (user, leave type, year)
// triple in the `leave_balances` table.  UsedDays is fractional because
// hour-denominated absences deduct partial days (4 hours = 0.5 days).
// The data layer does not enforce used_days <= total_days; accrual is
// purely additive when a request is approved.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – owner of the balance.
//  LeaveTypeID – leave category the balance applies to.
//  Year        – calendar year the allotment covers.
//  TotalDays   – days granted for the year.
//  UsedDays    – days consumed by approved requests.
type LeaveBalance struct {
	ID          uint64    // leave_balances.id
	UserID      uint64    // leave_balances.user_id
	LeaveTypeID uint64    // leave_balances.leave_type_id
	Year        int       // leave_balances.year
	TotalDays   int       // leave_balances.total_days
	UsedDays    float64   // leave_balances.used_days
	CreatedAt   time.Time // leave_balances.created_at
	UpdatedAt   time.Time // leave_balances.updated_at
}

// LeaveRequest records an employee's absence submission in the
// `leave_requests` table.  StartDate and EndDate are stored as
// YYYY-MM-DD strings; Days is the inclusive calendar span and Hours the
// per-day quantity (2, 4 or 8 by convention).
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – requesting user.
//  LeaveTypeID – requested leave category.
//  StartDate   – first day of the absence (YYYY-MM-DD).
//  EndDate     – last day of the absence, inclusive (YYYY-MM-DD).
//  Days        – inclusive calendar-day span.
//  Hours       – hours per day, (0, 24]; 8 means a full day.
//  Status      – pending | approved | rejected.
//  Notes       – optional free-form note from the requester.
//  ReviewedBy  – admin who reviewed the request (null while pending).
//  ReviewedAt  – when the review happened (null while pending).
//  ClosureID   – set on rows generated by closure auto_leave, so an
//                approved exception can find and remove them.
type LeaveRequest struct {
	ID          uint64     // leave_requests.id
	UserID      uint64     // leave_requests.user_id
	LeaveTypeID uint64     // leave_requests.leave_type_id
	StartDate   string     // leave_requests.start_date
	EndDate     string     // leave_requests.end_date
	Days        int        // leave_requests.days
	Hours       float64    // leave_requests.hours
	Status      string     // leave_requests.status
	Notes       string     // leave_requests.notes
	ReviewedBy  *uint64    // leave_requests.reviewed_by (nullable)
	ReviewedAt  *time.Time // leave_requests.reviewed_at (nullable)
	ClosureID   *uint64    // leave_requests.closure_id (nullable)
	CreatedAt   time.Time  // leave_requests.created_at
	UpdatedAt   time.Time  // leave_requests.updated_at
}
