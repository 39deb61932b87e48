// Package customerrepo manages read-only repository access to customers.
//
// The ledger core never mutates customer records; it only resolves the
// owning customer of an account for audit correlation.
package customerrepo

import (
	"context"
	"database/sql"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates customer repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns customer RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const getQuery = `
SELECT
	id, name, email
FROM customers
WHERE id = $1
`

// Get returns the customer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	var c domain.Customer

	err := r.db.QueryRowContext(ctx, getQuery, id).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return c, domain.ErrCustomerNotFound
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const getByAccountQuery = `
SELECT
	c.id, c.name, c.email
FROM customers c
JOIN accounts a ON a.customer_id = c.id
WHERE a.account_no = $1
`

// GetByAccount returns the customer owning the given account.
func (r *RepoPGS) GetByAccount(ctx context.Context, accountNumber string) (domain.Customer, error) {
	l := zerolog.Ctx(ctx)

	var c domain.Customer

	err := r.db.QueryRowContext(ctx, getByAccountQuery, accountNumber).Scan(&c.ID, &c.Name, &c.Email)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return c, domain.ErrCustomerNotFound
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}
