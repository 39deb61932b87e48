// Package transactiondelivery manages delivery layer of ledger transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/adnanbp/bankoffice/internal/domain"
	"github.com/adnanbp/bankoffice/pkg/errorspkg"
	"github.com/adnanbp/bankoffice/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.TransactionTxResult, error)
	ListByAccount(ctx context.Context, accountNumber string, pageSize, pageID int32) ([]domain.Transaction, error)
}

// ValidType validates the transaction type binding.
var ValidType validator.Func = func(fl validator.FieldLevel) bool {
	if t, ok := fl.Field().Interface().(string); ok {
		switch t {
		case domain.Deposit, domain.Withdrawal, domain.Transfer:
			return true
		}
	}

	return false
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

type createRequest struct {
	Type          string `json:"type" binding:"required,txtype"`
	FromAccountNo string `json:"from_account_no"`
	ToAccountNo   string `json:"to_account_no"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
}

type data struct {
	ID          int64  `json:"id"`
	ReferenceNo string `json:"reference_no"`
	Status      string `json:"status"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

// Create handles http request to apply one ledger transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	arg := domain.CreateTransactionParams{
		Type:        req.Type,
		FromAccount: req.FromAccountNo,
		ToAccount:   req.ToAccountNo,
		Amount:      req.Amount,
		Description: req.Description,
	}

	result, err := h.service.Create(ctx, arg)
	if err != nil {
		l.Info().Err(err).Send()

		switch err {
		case
			domain.ErrInvalidAmount,
			domain.ErrNonPositiveAmount,
			domain.ErrMissingAccount,
			domain.ErrSameAccount,
			domain.ErrUnsupportedType,
			domain.ErrAccountNotActive,
			domain.ErrInsufficientBalance:
			gctx.JSON(http.StatusBadRequest, web.Error(err))

			return
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))

			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{
			ID:          result.Transaction.ID,
			ReferenceNo: result.Transaction.ReferenceNo,
			Status:      result.Transaction.Status,
		},
	}

	gctx.JSON(http.StatusCreated, res)
}

type listRequest struct {
	AccountNo string `uri:"account_no" binding:"required"`
}

type listQuery struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// ListByAccount handles http request to list the account's transactions.
func (h *Handler) ListByAccount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	var q listQuery
	if err := gctx.ShouldBindQuery(&q); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	transactions, err := h.service.ListByAccount(ctx, req.AccountNo, q.PageSize, q.PageID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseTransactions{
		Data: dataTransactions{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}
