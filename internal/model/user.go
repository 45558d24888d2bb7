package model

import (
	"database/sql"
	"time"
)

// Role values stored in users.role and carried in the JWT "role" claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table. Each field corresponds to a column in the database. These
// structs are primarily used internally by the repository layer;
// handlers define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Name         – display name shown on requests and the calendar.
//  PasswordHash – bcrypt hashed password.
//  Role         – "user" or "admin"; admins review requests and manage the team.
//  IsActive     – whether the account is active.
//  LastSignedIn – timestamp of the most recent successful login.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64 // users.id
	Email        string // users.email
	Name         string // users.name
	PasswordHash string // users.password_hash
	Role         string // users.role
	IsActive     bool         // users.is_active
	LastSignedIn sql.NullTime // users.last_signed_in (null until first login)
	CreatedAt    time.Time    // users.created_at
	UpdatedAt    time.Time    // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
