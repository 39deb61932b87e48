package domain

import (
	"errors"
	"time"
)

var (
	// ErrInvalidAmount indicates that the amount is not a valid decimal number.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNonPositiveAmount indicates zero or negative amount.
	ErrNonPositiveAmount = errors.New("amount must be positive")
	// ErrMissingAccount indicates that a required account number is absent.
	ErrMissingAccount = errors.New("missing required account")
	// ErrSameAccount indicates a transfer between an account and itself.
	ErrSameAccount = errors.New("source and destination accounts must differ")
	// ErrUnsupportedType indicates an unknown transaction type.
	ErrUnsupportedType = errors.New("unsupported transaction type")
	// ErrReferenceCollision indicates that the generated reference number is already taken.
	ErrReferenceCollision = errors.New("reference number collision")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Transaction types.
const (
	Deposit    = "Deposit"
	Withdrawal = "Withdrawal"
	Transfer   = "Transfer"
)

// Transaction statuses. Only Completed transactions are persisted;
// Failed and RolledBack describe terminal outcomes of unsuccessful
// attempts and appear in audit events only.
const (
	TxCompleted  = "Completed"
	TxFailed     = "Failed"
	TxRolledBack = "RolledBack"
)

// Transaction is a committed ledger transaction. FromAccount is empty
// for deposits, ToAccount is empty for withdrawals.
type Transaction struct {
	ID          int64     `json:"id"`
	FromAccount string    `json:"from_account_no,omitempty"`
	ToAccount   string    `json:"to_account_no,omitempty"`
	Amount      string    `json:"amount"` // must be positive
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	ReferenceNo string    `json:"reference_no"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTransactionParams is the input data for one transaction attempt.
type CreateTransactionParams struct {
	Type        string `json:"type"`
	FromAccount string `json:"from_account_no"`
	ToAccount   string `json:"to_account_no"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// AccountChange captures the balance movement applied to one account
// inside the atomic unit.
type AccountChange struct {
	AccountNumber string `json:"account_number"`
	CustomerID    int64  `json:"customer_id"`
	BalanceBefore string `json:"balance_before"`
	BalanceAfter  string `json:"balance_after"`
}

// TransactionTxResult is the result of the atomic transaction unit.
// From is nil for deposits, To is nil for withdrawals.
type TransactionTxResult struct {
	Transaction Transaction    `json:"transaction"`
	From        *AccountChange `json:"from,omitempty"`
	To          *AccountChange `json:"to,omitempty"`
}

// TransactionOutcome describes the terminal state of one transaction
// attempt for audit correlation. Result is nil unless the attempt
// committed; Reason holds the rejection kind otherwise.
type TransactionOutcome struct {
	Params CreateTransactionParams
	Result *TransactionTxResult
	Status string // TxCompleted or TxRolledBack
	Reason string
}
