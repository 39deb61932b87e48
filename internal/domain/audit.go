package domain

import "time"

// Audit event statuses.
const (
	AuditSuccess = "Success"
	AuditFailed  = "Failed"
)

// AuditEvent is a correlated record of one transaction outcome. Detail
// holds a JSON document with enough data (accounts, amount, resulting
// status, balances) to reconstruct the event independently of the
// Transaction row.
type AuditEvent struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Action     string    `json:"action"`
	RecordRef  string    `json:"record_ref"`
	Detail     string    `json:"detail"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
