// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"time"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountNotActive indicates that the account cannot take part in transactions.
	ErrAccountNotActive = errors.New("account is not active")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrCustomerNotFound indicates that the owning customer is not found.
	ErrCustomerNotFound = errors.New("customer not found")
)

// Supported account types.
const (
	Savings      = "Savings"
	Current      = "Current"
	FixedDeposit = "FixedDeposit"
)

// Account statuses. Only Active accounts take part in transactions.
const (
	StatusActive   = "Active"
	StatusClosed   = "Closed"
	StatusFrozen   = "Frozen"
	StatusInactive = "Inactive"
)

// Account holds balance data for a single customer account.
//
// AccountNumber and CustomerID are immutable. Balance and
// LastTransactionAt are mutated exclusively by the ledger engine.
type Account struct {
	AccountNumber     string    `json:"account_number"`
	CustomerID        int64     `json:"customer_id"`
	Type              string    `json:"account_type"`
	Balance           string    `json:"balance"`
	Status            string    `json:"status"`
	LastTransactionAt time.Time `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Customer holds the read-only customer attributes needed
// to correlate audit events with the account owner.
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
