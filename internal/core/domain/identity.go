package domain

import "time"

// RoleName enumerates the fixed set of roles seeded as reference data.
type RoleName string

const (
	RoleCustomer RoleName = "CUSTOMER"
	RoleManager  RoleName = "MANAGER"
	RoleAdmin    RoleName = "ADMIN"
)

// Valid reports whether the role name belongs to the seeded enum.
func (n RoleName) Valid() bool {
	switch n {
	case RoleCustomer, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the persisted representation in the users table.
// Role is a non-owning reference to shared, immutable reference data.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	RoleID       string
	Role         *Role
	Profile      *UserProfile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the user with credential material removed.
func (u User) Sanitized() User {
	copied := u
	copied.PasswordHash = ""
	return copied
}

// UserProfile carries the mutable, non-security profile fields.
type UserProfile struct {
	UserID    string
	FirstName string
	LastName  *string
	Phone     *string
}
