package models

import "time"

// Transaction types form a closed set. Older records also use
// withdrawal/deposit, so both pairs are accepted.
const (
	TypeDebit      = "debit"
	TypeCredit     = "credit"
	TypeWithdrawal = "withdrawal"
	TypeDeposit    = "deposit"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Transaction represents a financial transaction
type Transaction struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Description string    `json:"description,omitempty"`
	Merchant    string    `json:"merchant,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ValidType reports whether t belongs to the transaction type set.
func ValidType(t string) bool {
	switch t {
	case TypeDebit, TypeCredit, TypeWithdrawal, TypeDeposit:
		return true
	}
	return false
}

// ValidStatus reports whether s belongs to the status set.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
