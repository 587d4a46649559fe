package models

import "time"

// Role determines which view of the claims data a user gets.
type Role string

const (
	RolePolicyholder Role = "policyholder"
	RoleInsurer      Role = "insurer"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RolePolicyholder || r == RoleInsurer
}

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	Role         Role      `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}
