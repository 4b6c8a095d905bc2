package domain

import "time"

// Role enumerates operator roles.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleTechnician Role = "technician"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleTechnician:
		return true
	}
	return false
}

// CanTransitionJobs reports whether the role may drive job status changes.
func (r Role) CanTransitionJobs() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleTechnician
}

// User is an operator account. StoreID is the home store; nil for admins
// whose scope comes from UserStore grants (absence of grants means all stores).
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	FullName     string
	Email        string
	StoreID      *int64
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// UserStore grants a user access to a store beyond their home store.
type UserStore struct {
	ID         int64
	UserID     int64
	StoreID    int64
	IsPrimary  bool
	AssignedAt time.Time
}
