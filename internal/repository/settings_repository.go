package repository

import (
	"context"
	"database/sql"
)

// SettingsRepo provides access to the single-row org_settings table
// holding the organization profile and the leave policy rules.  The row
// is created lazily on the first update; reads before that return the
// defaults.
type SettingsRepo struct{ db *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// OrgProfile is the organization's display identity.
type OrgProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LeaveRules is the leave policy advertised to clients.  The request
// form reads these before submitting; the server stores them verbatim.
type LeaveRules struct {
	MinNoticeDays        int `json:"min_notice_days"`
	MaxConsecutiveDays   int `json:"max_consecutive_days"`
	AutoApproveUnderDays int `json:"auto_approve_under_days"`
}

// DefaultLeaveRules is what a fresh installation advertises.
func DefaultLeaveRules() LeaveRules {
	return LeaveRules{MinNoticeDays: 7, MaxConsecutiveDays: 15, AutoApproveUnderDays: 0}
}

// GetProfile returns the organization profile.  An unconfigured
// installation yields a zero profile, not an error.
func (r *SettingsRepo) GetProfile(ctx context.Context) (OrgProfile, error) {
	var p OrgProfile
	err := r.db.QueryRowContext(ctx,
		"SELECT name, email FROM org_settings WHERE id = 1").Scan(&p.Name, &p.Email)
	if err == sql.ErrNoRows {
		return OrgProfile{}, nil
	}
	return p, err
}

// UpdateProfile upserts the organization profile, keeping any stored
// rules.
func (r *SettingsRepo) UpdateProfile(ctx context.Context, p OrgProfile) error {
	rules := DefaultLeaveRules()
	const q = `INSERT INTO org_settings
	           (id, name, email, min_notice_days, max_consecutive_days, auto_approve_under_days)
	           VALUES (1,?,?,?,?,?)
	           ON DUPLICATE KEY UPDATE name=VALUES(name), email=VALUES(email)`
	_, err := r.db.ExecContext(ctx, q, p.Name, p.Email,
		rules.MinNoticeDays, rules.MaxConsecutiveDays, rules.AutoApproveUnderDays)
	return err
}

// GetRules returns the leave policy rules, falling back to the defaults
// when nothing was stored yet.
func (r *SettingsRepo) GetRules(ctx context.Context) (LeaveRules, error) {
	var rules LeaveRules
	err := r.db.QueryRowContext(ctx,
		"SELECT min_notice_days, max_consecutive_days, auto_approve_under_days FROM org_settings WHERE id = 1").
		Scan(&rules.MinNoticeDays, &rules.MaxConsecutiveDays, &rules.AutoApproveUnderDays)
	if err == sql.ErrNoRows {
		return DefaultLeaveRules(), nil
	}
	return rules, err
}

// UpdateRules upserts the leave policy rules, keeping any stored
// profile.
func (r *SettingsRepo) UpdateRules(ctx context.Context, rules LeaveRules) error {
	const q = `INSERT INTO org_settings
	           (id, name, email, min_notice_days, max_consecutive_days, auto_approve_under_days)
	           VALUES (1,'','',?,?,?)
	           ON DUPLICATE KEY UPDATE
	             min_notice_days=VALUES(min_notice_days),
	             max_consecutive_days=VALUES(max_consecutive_days),
	             auto_approve_under_days=VALUES(auto_approve_under_days)`
	_, err := r.db.ExecContext(ctx, q,
		rules.MinNoticeDays, rules.MaxConsecutiveDays, rules.AutoApproveUnderDays)
	return err
}
