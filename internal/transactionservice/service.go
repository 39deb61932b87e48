// Package transactionservice manages business logic layer of ledger transactions.
package transactionservice

import (
	"context"
	"time"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Repo provides data access layer interface needed by transaction service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transactionservice
type Repo interface {
	Execute(ctx context.Context, arg domain.CreateTransactionParams, referenceNo string) (domain.TransactionTxResult, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, error)
}

// Auditor records the terminal outcome of every transaction attempt.
// Recording never fails the money path.
type Auditor interface {
	Record(ctx context.Context, outcome domain.TransactionOutcome)
}

// ReferenceGenerator issues globally unique reference numbers.
type ReferenceGenerator interface {
	Next() string
}

// Service facilitates transaction service layer logic.
type Service struct {
	repo         Repo
	auditor      Auditor
	refs         ReferenceGenerator
	storeTimeout time.Duration
}

// New returns transaction service struct to manage transaction bussines logic.
// A non-zero storeTimeout bounds every atomic unit; expiry rolls the attempt back.
func New(tr Repo, auditor Auditor, refs ReferenceGenerator, storeTimeout time.Duration) *Service {
	return &Service{
		repo:         tr,
		auditor:      auditor,
		refs:         refs,
		storeTimeout: storeTimeout,
	}
}

// Validate checks structural and business preconditions of a transaction
// request. It is a pure function of the request and performs no store access.
func Validate(arg domain.CreateTransactionParams) error {
	amount, err := decimal.NewFromString(arg.Amount)
	if err != nil {
		return domain.ErrInvalidAmount
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrNonPositiveAmount
	}

	switch arg.Type {
	case domain.Deposit:
		if arg.ToAccount == "" {
			return domain.ErrMissingAccount
		}
	case domain.Withdrawal:
		if arg.FromAccount == "" {
			return domain.ErrMissingAccount
		}
	case domain.Transfer:
		if arg.FromAccount == "" || arg.ToAccount == "" {
			return domain.ErrMissingAccount
		}

		if arg.FromAccount == arg.ToAccount {
			return domain.ErrSameAccount
		}
	default:
		return domain.ErrUnsupportedType
	}

	return nil
}

// stage names the lifecycle states of one transaction attempt.
type stage string

const (
	stageInitiated  stage = "Initiated"
	stageValidated  stage = "Validated"
	stageApplying   stage = "Applying"
	stageCommitted  stage = "Committed"
	stageRolledBack stage = "RolledBack"
)

// attempt tracks one request through its lifecycle. Any error while
// Applying transitions to RolledBack, never to Committed.
type attempt struct {
	stage       stage
	referenceNo string
}

func (a *attempt) advance(l *zerolog.Logger, next stage) {
	l.Debug().
		Str("reference_no", a.referenceNo).
		Str("from", string(a.stage)).
		Str("to", string(next)).
		Msg("transaction attempt")

	a.stage = next
}

// Create validates the request and applies it as one atomic unit.
//
// On a reference collision the atomic unit is retried exactly once with
// a freshly generated value. The terminal outcome, Committed or
// RolledBack, is handed to the auditor exactly once either way.
func (s *Service) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionTxResult, error) {
	l := zerolog.Ctx(ctx)

	a := &attempt{stage: stageInitiated}

	if err := Validate(arg); err != nil {
		l.Info().Err(err).Send()
		a.advance(l, stageRolledBack)
		s.audit(ctx, arg, nil, err)

		return domain.TransactionTxResult{}, err
	}

	a.advance(l, stageValidated)

	storeCtx := ctx

	if s.storeTimeout > 0 {
		var cancel context.CancelFunc
		storeCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)

		defer cancel()
	}

	a.referenceNo = s.refs.Next()
	a.advance(l, stageApplying)

	result, err := s.repo.Execute(storeCtx, arg, a.referenceNo)
	if err == domain.ErrReferenceCollision {
		l.Warn().Str("reference_no", a.referenceNo).Msg("reference collision, retrying once with a fresh value")

		a.referenceNo = s.refs.Next()
		result, err = s.repo.Execute(storeCtx, arg, a.referenceNo)
	}

	if err != nil {
		l.Info().Err(err).Send()
		a.advance(l, stageRolledBack)
		s.audit(ctx, arg, nil, err)

		return domain.TransactionTxResult{}, err
	}

	a.advance(l, stageCommitted)
	s.audit(ctx, arg, &result, nil)

	return result, nil
}

// ListByAccount returns committed transactions where the given account
// is source or destination, newest first.
func (s *Service) ListByAccount(ctx context.Context, accountNumber string, pageSize, pageID int32) ([]domain.Transaction, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	transactions, err := s.repo.ListByAccount(ctx, accountNumber, limit, offset)
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

// audit hands the terminal outcome to the correlator. It runs on the
// request context, not the store context, so a store timeout cannot
// suppress the audit attempt.
func (s *Service) audit(ctx context.Context, arg domain.CreateTransactionParams, result *domain.TransactionTxResult, cause error) {
	outcome := domain.TransactionOutcome{
		Params: arg,
		Result: result,
		Status: domain.TxCompleted,
	}

	if cause != nil {
		outcome.Status = domain.TxRolledBack
		outcome.Reason = cause.Error()
	}

	s.auditor.Record(ctx, outcome)
}
