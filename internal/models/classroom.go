package models

import "time"

// Classroom is a site-scoped section (level + grade + section letter) with
// a capacity and an optional homeroom teacher.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	SiteID    string    `db:"site_id" json:"site_id"`
	Level     string    `db:"level" json:"level"`
	Grade     string    `db:"grade" json:"grade"`
	Section   string    `db:"section" json:"section"`
	Capacity  int       `db:"capacity" json:"capacity"`
	TeacherID *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomCourse assigns a course to a classroom with a competency
// weighting. Weights for one classroom-course pairing must sum to 100 or
// less.
type ClassroomCourse struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Competency  string    `db:"competency" json:"competency"`
	Weight      float64   `db:"weight" json:"weight"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ClassroomFilter scopes classroom listings.
type ClassroomFilter struct {
	SiteID   string
	Level    string
	Grade    string
	Page     int
	PageSize int
}
