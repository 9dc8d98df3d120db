package models

import "time"

// UserRole represents the available account roles.
type UserRole string

const (
	// RoleAdmin accounts manage the course catalog.
	RoleAdmin UserRole = "ADMIN"
	// RoleTA accounts publish tutoring hours. Every signup gets this role.
	RoleTA UserRole = "TA"
)

// User represents an account stored in the users table. Every account owns
// exactly one TA profile, created alongside it at signup.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         UserRole   `db:"role" json:"role"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
