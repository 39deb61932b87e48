// Package auditservice correlates transaction outcomes into audit events.
package auditservice

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by audit service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package auditservice
type Repo interface {
	Create(ctx context.Context, arg domain.AuditEvent) (domain.AuditEvent, error)
}

// CustomerRepo resolves the owning customer of an account. Read-only.
type CustomerRepo interface {
	GetByAccount(ctx context.Context, accountNumber string) (domain.Customer, error)
}

// Service facilitates audit service layer logic.
type Service struct {
	repo      Repo
	customers CustomerRepo
}

// New returns audit service struct to correlate transaction outcomes.
func New(ar Repo, cr CustomerRepo) *Service {
	return &Service{
		repo:      ar,
		customers: cr,
	}
}

type balanceChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// detail is the self-sufficient payload of one audit event. It carries
// enough data to reconstruct the outcome without the transaction row.
type detail struct {
	Type        string         `json:"type"`
	FromAccount string         `json:"from_account_no,omitempty"`
	ToAccount   string         `json:"to_account_no,omitempty"`
	Amount      string         `json:"amount"`
	Status      string         `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	From        *balanceChange `json:"from,omitempty"`
	To          *balanceChange `json:"to,omitempty"`
}

// Record appends one audit event for a terminal transaction outcome.
// It is attempted exactly once per outcome; failures are logged and
// swallowed so that audit trouble never fails a financial commit.
func (s *Service) Record(ctx context.Context, outcome domain.TransactionOutcome) {
	l := zerolog.Ctx(ctx)

	event := domain.AuditEvent{
		Action: strings.ToUpper(outcome.Params.Type),
	}

	if outcome.Status == domain.TxCompleted {
		event.Status = domain.AuditSuccess
	} else {
		event.Status = domain.AuditFailed
	}

	d := detail{
		Type:        outcome.Params.Type,
		FromAccount: outcome.Params.FromAccount,
		ToAccount:   outcome.Params.ToAccount,
		Amount:      outcome.Params.Amount,
		Status:      outcome.Status,
		Reason:      outcome.Reason,
	}

	if outcome.Result != nil {
		event.RecordRef = outcome.Result.Transaction.ReferenceNo

		if c := outcome.Result.From; c != nil {
			d.From = &balanceChange{Before: c.BalanceBefore, After: c.BalanceAfter}
		}

		if c := outcome.Result.To; c != nil {
			d.To = &balanceChange{Before: c.BalanceBefore, After: c.BalanceAfter}
		}
	}

	event.CustomerID = s.resolveActor(ctx, outcome)

	payload, err := json.Marshal(d)
	if err != nil {
		l.Error().Err(err).Msg("audit detail not encodable")
		return
	}

	event.Detail = string(payload)

	if _, err := s.repo.Create(ctx, event); err != nil {
		l.Error().Err(err).Str("record_ref", event.RecordRef).Msg("audit event not recorded")
	}
}

// resolveActor finds the customer the event belongs to: the source
// account's owner when money leaves an account, the destination's owner
// for deposits. Committed outcomes already carry the owner; otherwise
// the read-only customer store is consulted. Zero means unresolvable,
// which happens for structurally invalid requests.
func (s *Service) resolveActor(ctx context.Context, outcome domain.TransactionOutcome) int64 {
	l := zerolog.Ctx(ctx)

	if r := outcome.Result; r != nil {
		if r.From != nil {
			return r.From.CustomerID
		}

		if r.To != nil {
			return r.To.CustomerID
		}
	}

	accountNumber := outcome.Params.FromAccount
	if outcome.Params.Type == domain.Deposit {
		accountNumber = outcome.Params.ToAccount
	}

	if accountNumber == "" {
		return 0
	}

	customer, err := s.customers.GetByAccount(ctx, accountNumber)
	if err != nil {
		l.Warn().Err(err).Str("account_no", accountNumber).Msg("audit actor not resolved")
		return 0
	}

	return customer.ID
}
