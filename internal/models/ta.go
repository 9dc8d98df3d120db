package models

import "time"

// TA is a teaching-assistant profile bound one-to-one to a user account.
// FullName and Email are joined in from the owning account for display.
type TA struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Major     string    `db:"major" json:"major"`
	Bio       *string   `db:"bio" json:"bio,omitempty"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Courses []Course `db:"-" json:"courses,omitempty"`
}
