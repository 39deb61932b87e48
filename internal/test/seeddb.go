// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"

	"github.com/adnanbp/bankoffice/internal/accountrepo"
	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"
	"github.com/adnanbp/bankoffice/pkg/randompkg"
)

// SeedCustomer creates a random customer inside a test transaction.
//
// Customer records are owned by the customer-administration collaborator,
// so the ledger core has no write repository for them; tests insert
// directly.
func SeedCustomer(t *testing.T, tx dbpkg.SQLInterface) domain.Customer {
	t.Helper()

	const query = `
	INSERT INTO customers (name, email, cnic)
	VALUES ($1, $2, $3)
	RETURNING id, name, email`

	var c domain.Customer

	row := tx.QueryRowContext(context.Background(), query,
		randompkg.Name(),
		randompkg.Email(),
		randompkg.AccountNumber(),
	)

	if err := row.Scan(&c.ID, &c.Name, &c.Email); err != nil {
		t.Fatalf("seeding customer returned error: %v", err)
	}

	return c
}

// SeedAccount creates an Active savings account with the given balance
// inside a test transaction.
func SeedAccount(t *testing.T, tx dbpkg.SQLInterface, customerID int64, balance string) domain.Account {
	t.Helper()

	arg := domain.Account{
		AccountNumber: randompkg.AccountNumber(),
		CustomerID:    customerID,
		Type:          domain.Savings,
		Balance:       balance,
		Status:        domain.StatusActive,
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccountWithStatus creates an account in the given status inside a
// test transaction.
func SeedAccountWithStatus(t *testing.T, tx dbpkg.SQLInterface, customerID int64, balance, status string) domain.Account {
	t.Helper()

	arg := domain.Account{
		AccountNumber: randompkg.AccountNumber(),
		CustomerID:    customerID,
		Type:          domain.Savings,
		Balance:       balance,
		Status:        status,
	}

	accountRepo := accountrepo.NewRepoPGS(tx)

	account, err := accountRepo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}
