package models

import "time"

// Teacher represents an instructor record. Lifecycle is independent from
// students; deactivation is a soft toggle.
type Teacher struct {
	ID         string    `db:"id" json:"id"`
	NationalID string    `db:"national_id" json:"national_id"`
	FirstName  string    `db:"first_name" json:"first_name"`
	LastName   string    `db:"last_name" json:"last_name"`
	Specialty  *string   `db:"specialty" json:"specialty,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Email      string    `db:"email" json:"email"`
	SiteID     string    `db:"site_id" json:"site_id"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	SiteID    string
	Specialty string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
