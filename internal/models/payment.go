package models

import "time"

// InstallmentStatus represents the payment state of an installment.
type InstallmentStatus string

// Status transitions: PENDING/OVERDUE -> PAID through the payment
// operation, PAID -> PENDING/OVERDUE only through the reversal operation.
const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusOverdue InstallmentStatus = "OVERDUE"
)

// PaymentPlan groups the installments of one academic cycle and level.
// Total/paid/remaining are derived from installment rows and only updated
// inside payment transactions.
type PaymentPlan struct {
	ID        string    `db:"id" json:"id"`
	Cycle     string    `db:"cycle" json:"cycle"`
	Level     string    `db:"level" json:"level"`
	Total     float64   `db:"total" json:"total"`
	Paid      float64   `db:"paid" json:"paid"`
	Remaining float64   `db:"remaining" json:"remaining"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Installment is one scheduled partial payment within a plan, owed by one
// student.
type Installment struct {
	ID        string            `db:"id" json:"id"`
	PlanID    string            `db:"plan_id" json:"plan_id"`
	StudentID string            `db:"student_id" json:"student_id"`
	Number    int               `db:"number" json:"number"`
	Concept   string            `db:"concept" json:"concept"`
	Amount    float64           `db:"amount" json:"amount"`
	DueDate   time.Time         `db:"due_date" json:"due_date"`
	Status    InstallmentStatus `db:"status" json:"status"`
	Method    *string           `db:"method" json:"method,omitempty"`
	PaidAt    *time.Time        `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
}

// InstallmentFilter scopes installment listings.
type InstallmentFilter struct {
	PlanID    string
	StudentID string
	Status    InstallmentStatus
	Page      int
	PageSize  int
}

// PaymentReceipt summarizes a processed payment for the caller.
type PaymentReceipt struct {
	InstallmentID string  `json:"installment_id"`
	Amount        float64 `json:"amount"`
	PlanPaid      float64 `json:"plan_paid"`
	PlanRemaining float64 `json:"plan_remaining"`
	PendingDebt   float64 `json:"pending_debt"`
}
