// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

func scanAccount(row *sql.Row) (domain.Account, error) {
	var (
		a      domain.Account
		lastTx sql.NullTime
	)

	err := row.Scan(
		&a.AccountNumber,
		&a.CustomerID,
		&a.Type,
		&a.Balance,
		&a.Status,
		&lastTx,
		&a.CreatedAt,
	)
	if err != nil {
		return a, err
	}

	if lastTx.Valid {
		a.LastTransactionAt = lastTx.Time
	}

	return a, nil
}

const getQuery = `
SELECT
	account_no, customer_id, account_type, balance, status, last_transaction_at, created_at
FROM accounts
WHERE account_no = $1
`

// Get returns the account with the given number.
func (r *RepoPGS) Get(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const getForUpdateQuery = getQuery + `
FOR UPDATE
`

// GetForUpdate returns the account with the given number and holds its
// row lock until the surrounding transaction ends. Concurrent balance
// checks against the same account serialize on this lock.
func (r *RepoPGS) GetForUpdate(ctx context.Context, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getForUpdateQuery, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1, last_transaction_at = now()
WHERE account_no = $2
RETURNING account_no, customer_id, account_type, balance, status, last_transaction_at, created_at
`

// AddBalance changes the account's balance and returns the changed account.
// Negative amounts debit the account; the accounts_balance_check constraint
// rejects any debit that would take the balance below zero.
func (r *RepoPGS) AddBalance(ctx context.Context, amount, accountNumber string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, accountNumber))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_balance_check" {
				return a, domain.ErrInsufficientBalance
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const createQuery = `
INSERT INTO
    accounts (account_no, customer_id, account_type, balance, status)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING account_no, customer_id, account_type, balance, status, last_transaction_at, created_at
`

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.AccountNumber,
		arg.CustomerID,
		arg.Type,
		arg.Balance,
		arg.Status,
	)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "accounts_customer_id_fkey" {
				return a, domain.ErrCustomerNotFound
			}
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listAccounts = `
SELECT
	account_no, customer_id, account_type, balance, status, last_transaction_at, created_at
FROM accounts
WHERE customer_id = $1
ORDER BY account_no
LIMIT $2 OFFSET $3
`

// List returns the specified number of accounts for the given customer.
func (r *RepoPGS) List(ctx context.Context, customerID int64, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, customerID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		var (
			a      domain.Account
			lastTx sql.NullTime
		)

		if err := rows.Scan(
			&a.AccountNumber,
			&a.CustomerID,
			&a.Type,
			&a.Balance,
			&a.Status,
			&lastTx,
			&a.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		if lastTx.Valid {
			a.LastTransactionAt = lastTx.Time
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
