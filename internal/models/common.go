package models

// Pagination carries list paging metadata.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// OperationResult is the outcome contract of every transactional operation.
// Success=false means a business-rule rejection (duplicate enrollment,
// insufficient stock, already-paid installment); callers branch on the flag,
// never on the message text. Transport and contention failures do not use
// this shape.
type OperationResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Rejected builds a business-rule rejection result.
func Rejected(message string) *OperationResult {
	return &OperationResult{Success: false, Message: message}
}

// Accepted builds a successful result with optional payload.
func Accepted(message string, data interface{}) *OperationResult {
	return &OperationResult{Success: true, Message: message, Data: data}
}
