package models

import "time"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleWorker     = "worker"
)

// User account statuses.
const (
	UserStatusActive = "active"
	UserStatusFired  = "fired"
)

// User represents a user account. Password carries the bcrypt hash and is
// never serialized.
type User struct {
	ID        int64      `json:"id" db:"id"`
	Login     string     `json:"login" db:"login"`
	Password  string     `json:"-" db:"password"`
	FullName  string     `json:"full_name" db:"full_name"`
	Role      string     `json:"role" db:"role"`
	Status    string     `json:"status" db:"status"`
	FiredAt   *time.Time `json:"fired_at,omitempty" db:"fired_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsPrivileged reports whether the role may manage sections, colors and
// other protected resources.
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin || u.Role == RoleSupervisor
}
