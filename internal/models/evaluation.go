package models

import "time"

// Evaluation is a single graded assessment belonging to an enrollment.
type Evaluation struct {
	ID           string    `db:"id" json:"id"`
	EnrollmentID string    `db:"enrollment_id" json:"enrollment_id"`
	Type         string    `db:"type" json:"type"`
	Score        float64   `db:"score" json:"score"`
	Weight       float64   `db:"weight" json:"weight"`
	EvaluatedAt  time.Time `db:"evaluated_at" json:"evaluated_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// EvaluationFilter allows querying of evaluation entries.
type EvaluationFilter struct {
	EnrollmentID string
	Type         string
	From         *time.Time
	To           *time.Time
}
