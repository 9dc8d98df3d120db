package models

import "time"

// Course identifies a subject that can be tutored, e.g. "CSCI 150".
// Courses are managed through the admin endpoints and never deleted.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      *string   `db:"name" json:"name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
