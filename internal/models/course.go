package models

import "time"

// Course is a subject offering identified by a unique code. A course has at
// most one assigned teacher at a time; assignment is last-writer-wins.
type Course struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Credits   int       `db:"credits" json:"credits"`
	Level     string    `db:"level" json:"level"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail enriches Course with the assigned teacher's name.
type CourseDetail struct {
	Course
	TeacherName *string `db:"teacher_name" json:"teacher_name,omitempty"`
}

// CourseFilter captures filtering options for listing courses.
type CourseFilter struct {
	Search    string
	Level     string
	TeacherID string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
