// Package auditrepo manages repository layer of audit events.
package auditrepo

import (
	"context"
	"database/sql"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/dbpkg"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates audit repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns audit RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    audit_logs (customer_id, action, record_ref, detail, status)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING id, customer_id, action, record_ref, detail, status, created_at
`

// Create appends the audit event and then returns it. A zero customer id
// is stored as NULL; validation rejections have no resolvable owner.
func (r *RepoPGS) Create(ctx context.Context, arg domain.AuditEvent) (domain.AuditEvent, error) {
	l := zerolog.Ctx(ctx)

	customerID := sql.NullInt64{Int64: arg.CustomerID, Valid: arg.CustomerID != 0}

	row := r.db.QueryRowContext(ctx, createQuery,
		customerID,
		arg.Action,
		arg.RecordRef,
		arg.Detail,
		arg.Status,
	)

	var (
		e     domain.AuditEvent
		owner sql.NullInt64
	)

	err := row.Scan(
		&e.ID,
		&owner,
		&e.Action,
		&e.RecordRef,
		&e.Detail,
		&e.Status,
		&e.CreatedAt,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	e.CustomerID = owner.Int64

	return e, nil
}

const listByCustomerQuery = `
SELECT
	id, customer_id, action, record_ref, detail, status, created_at
FROM audit_logs
WHERE customer_id = $1
ORDER BY id DESC
LIMIT $2 OFFSET $3
`

// ListByCustomer returns the customer's audit events, newest first.
func (r *RepoPGS) ListByCustomer(ctx context.Context, customerID int64, limit, offset int32) ([]domain.AuditEvent, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByCustomerQuery, customerID, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.AuditEvent{}

	for rows.Next() {
		var (
			e     domain.AuditEvent
			owner sql.NullInt64
		)

		if err := rows.Scan(
			&e.ID,
			&owner,
			&e.Action,
			&e.RecordRef,
			&e.Detail,
			&e.Status,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		e.CustomerID = owner.Int64

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
