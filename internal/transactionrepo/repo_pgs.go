// Package transactionrepo manages repository layer of ledger transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adnanbp/bankoffice/internal/accountrepo"
	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transaction RepoPGS bound to an open transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transaction RepoPGS with connection to start atomic units.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO
    transactions (from_account_no, to_account_no, amount, type, status, description, reference_no)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, from_account_no, to_account_no, amount, type, status, description, reference_no, created_at
`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t        domain.Transaction
		from, to sql.NullString
	)

	err := row.Scan(
		&t.ID,
		&from,
		&to,
		&t.Amount,
		&t.Type,
		&t.Status,
		&t.Description,
		&t.ReferenceNo,
		&t.CreatedAt,
	)
	if err != nil {
		return t, err
	}

	t.FromAccount = from.String
	t.ToAccount = to.String

	return t, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create persists the committed transaction row and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams, referenceNo string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		nullable(arg.FromAccount),
		nullable(arg.ToAccount),
		arg.Amount,
		arg.Type,
		domain.TxCompleted,
		arg.Description,
		referenceNo,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v, %v)", arg, referenceNo)

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "transactions_reference_no_key":
				return t, domain.ErrReferenceCollision
			case "transactions_from_account_no_fkey",
				"transactions_to_account_no_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrNonPositiveAmount
			}
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
	id, from_account_no, to_account_no, amount, type, status, description, reference_no, created_at
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrTransactionNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listByAccountQuery = `
SELECT
	id, from_account_no, to_account_no, amount, type, status, description, reference_no, created_at
FROM transactions
WHERE
    from_account_no = $1 OR to_account_no = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// ListByAccount returns committed transactions where the account is
// source or destination, newest first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery, accountNumber, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

// mutation is one balance delta the atomic unit applies to an account.
type mutation struct {
	accountNumber string
	delta         string
	debit         bool
}

// mutationsFor lists the balance deltas for the request in canonical
// ascending account-number order. Acquiring row locks in that fixed
// order, regardless of which account is source or destination, makes
// deadlock between reverse-direction concurrent transfers impossible.
// Deltas are derived from the parsed amount, not the raw request
// string, so sign-prefixed inputs like "+5" stay valid numerics.
func mutationsFor(arg domain.CreateTransactionParams, amount decimal.Decimal) ([]mutation, error) {
	switch arg.Type {
	case domain.Deposit:
		return []mutation{{arg.ToAccount, amount.String(), false}}, nil
	case domain.Withdrawal:
		return []mutation{{arg.FromAccount, amount.Neg().String(), true}}, nil
	case domain.Transfer:
		debit := mutation{arg.FromAccount, amount.Neg().String(), true}
		credit := mutation{arg.ToAccount, amount.String(), false}

		if debit.accountNumber < credit.accountNumber {
			return []mutation{debit, credit}, nil
		}

		return []mutation{credit, debit}, nil
	}

	return nil, domain.ErrUnsupportedType
}

// Execute applies one transaction as a single atomic unit.
//
// It locks the involved account rows in canonical order, checks status
// and balance against the locked state, applies the balance deltas, and
// inserts the transaction row, all within one database transaction.
// Either every mutation and the row commit together or none do.
func (r *RepoPGS) Execute(ctx context.Context, arg domain.CreateTransactionParams, referenceNo string) (domain.TransactionTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransactionTxResult

	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return result, domain.ErrInvalidAmount
	}

	mutations, err := mutationsFor(arg, amount)
	if err != nil {
		return result, err
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return result, r.systemErr(ctx, err)
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	accountRepo := accountrepo.NewRepoPGS(tx)
	changes := make(map[string]*domain.AccountChange, len(mutations))

	for _, m := range mutations {
		account, err := accountRepo.GetForUpdate(ctx, m.accountNumber)
		if err != nil {
			return result, r.systemErr(ctx, err)
		}

		if account.Status != domain.StatusActive {
			return result, domain.ErrAccountNotActive
		}

		if m.debit {
			balance, err := decimal.NewFromString(account.Balance)
			if err != nil {
				l.Error().Err(err).Send()
				return result, errorspkg.ErrInternal
			}

			if balance.LessThan(amount) {
				return result, domain.ErrInsufficientBalance
			}
		}

		changes[m.accountNumber] = &domain.AccountChange{
			AccountNumber: account.AccountNumber,
			CustomerID:    account.CustomerID,
			BalanceBefore: account.Balance,
		}
	}

	for _, m := range mutations {
		account, err := accountRepo.AddBalance(ctx, m.delta, m.accountNumber)
		if err != nil {
			return result, r.systemErr(ctx, err)
		}

		changes[m.accountNumber].BalanceAfter = account.Balance
	}

	txnRepo := NewTxRepoPGS(tx)

	result.Transaction, err = txnRepo.Create(ctx, arg, referenceNo)
	if err != nil {
		return result, r.systemErr(ctx, err)
	}

	result.From = changes[arg.FromAccount]
	result.To = changes[arg.ToAccount]

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.TransactionTxResult{}, r.systemErr(ctx, err)
	}

	return result, nil
}

// systemErr keeps domain rejections intact and folds everything else
// into the system error kinds, distinguishing store timeouts.
func (r *RepoPGS) systemErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrReferenceCollision),
		errors.Is(err, domain.ErrNonPositiveAmount):
		return err
	case ctx.Err() != nil:
		return errorspkg.ErrTimeout
	default:
		return errorspkg.ErrInternal
	}
}
