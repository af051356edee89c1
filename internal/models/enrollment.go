package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive   EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive EnrollmentStatus = "INACTIVE"
)

// Enrollment links a student to a course within an academic period at a
// site. At most one active enrollment may exist per (student, course,
// period) triple.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	CourseID   string           `db:"course_id" json:"course_id"`
	SiteID     string           `db:"site_id" json:"site_id"`
	Period     string           `db:"period" json:"period"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	Status     EnrollmentStatus `db:"status" json:"status"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	SiteID    string
	Period    string
	Status    EnrollmentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AcademicStatusState labels whether the running average clears the passing
// threshold.
type AcademicStatusState string

const (
	AcademicStatusPassing AcademicStatusState = "PASSING"
	AcademicStatusFailing AcademicStatusState = "FAILING"
)

// AcademicStatus is the per-enrollment denormalized record holding the
// current weighted average. Written only inside the evaluation transaction.
type AcademicStatus struct {
	ID           string              `db:"id" json:"id"`
	EnrollmentID string              `db:"enrollment_id" json:"enrollment_id"`
	Average      float64             `db:"average" json:"average"`
	State        AcademicStatusState `db:"state" json:"state"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}
