package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
	"github.com/fsdevblog/groph-bank/internal/transport/api/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type LedgerHandler struct {
	svs LedgerServicer
}

func NewLedgerHandler(svs LedgerServicer) *LedgerHandler {
	return &LedgerHandler{
		svs: svs,
	}
}

type OutcomeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type AmountParams struct {
	Amount decimal.Decimal `binding:"money" json:"amount"`
}

type TransferParams struct {
	ToUser string          `binding:"required,max_bytes=32" json:"to_user"`
	Amount decimal.Decimal `binding:"money"                 json:"amount"`
}

// Deposit POST RouteGroup + DepositRoute. Пополняет баланс текущего юзера.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var params AmountParams
	if !bindParams(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	_, err := h.svs.Deposit(reqCtx, middlewares.CurrentUsername(c), params.Amount)
	respondOutcome(c, domain.OperationDeposit, err)
}

// Withdraw POST RouteGroup + WithdrawRoute. Списывает с баланса текущего юзера.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var params AmountParams
	if !bindParams(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	_, err := h.svs.Withdraw(reqCtx, middlewares.CurrentUsername(c), params.Amount)
	respondOutcome(c, domain.OperationWithdraw, err)
}

// Transfer POST RouteGroup + TransferRoute. Переводит деньги от текущего юзера юзеру to_user.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var params TransferParams
	if !bindParams(c, &params) {
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	_, err := h.svs.Transfer(reqCtx, middlewares.CurrentUsername(c), params.ToUser, params.Amount)
	respondOutcome(c, domain.OperationTransfer, err)
}

type BalanceResponse struct {
	OutcomeResponse
	Balance string `json:"balance"`
}

// Balance GET RouteGroup + BalanceRoute.
func (h *LedgerHandler) Balance(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.GetBalance(reqCtx, middlewares.CurrentUsername(c))
	if err != nil {
		respondOutcome(c, domain.OperationBalance, err)
		return
	}

	outcome := service.NewOutcome(domain.OperationBalance, nil)
	c.JSON(http.StatusOK, BalanceResponse{
		OutcomeResponse: OutcomeResponse{Success: outcome.Success, Message: outcome.Message},
		Balance:         balance.StringFixed(domain.AmountScale),
	})
}

type HistoryResponseItem struct {
	ID       int64                  `json:"id"`
	Type     domain.TransactionKind `json:"type"`
	FromUser *string                `json:"from_user"`
	ToUser   *string                `json:"to_user"`
	Amount   string                 `json:"amount"`
	Time     string                 `json:"time"`
}

type HistoryResponse struct {
	OutcomeResponse
	History []HistoryResponseItem `json:"history"`
}

// History GET RouteGroup + HistoryRoute. Журнал операций текущего юзера по возрастанию id.
func (h *LedgerHandler) History(c *gin.Context) {
	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.svs.GetHistory(reqCtx, middlewares.CurrentUsername(c))
	if err != nil {
		respondOutcome(c, domain.OperationHistory, err)
		return
	}

	items := make([]HistoryResponseItem, len(entries))
	for i, entry := range entries {
		items[i] = HistoryResponseItem{
			ID:       entry.ID,
			Type:     entry.Kind,
			FromUser: entry.Source,
			ToUser:   entry.Destination,
			Amount:   entry.Amount.StringFixed(domain.AmountScale),
			Time:     entry.CreatedAt.Format(time.RFC3339),
		}
	}

	outcome := service.NewOutcome(domain.OperationHistory, nil)
	c.JSON(http.StatusOK, HistoryResponse{
		OutcomeResponse: OutcomeResponse{Success: outcome.Success, Message: outcome.Message},
		History:         items,
	})
}

// bindParams разбирает тело запроса. При ошибке сам пишет ответ и возвращает false.
func bindParams(c *gin.Context, params any) bool {
	bindErr := c.ShouldBindJSON(params)
	if bindErr == nil {
		return true
	}

	var valErrs validator.ValidationErrors
	if errors.As(bindErr, &valErrs) {
		_ = c.Error(bindErr).SetType(gin.ErrorTypeBind)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, OutcomeResponse{
			Success: false,
			Message: "Invalid request parameters.",
		})
		return false
	}
	_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
	return false
}

// respondOutcome отдает клиенту результат операции. Ошибки хранилища логируются через приватные ошибки gin.
func respondOutcome(c *gin.Context, op domain.OperationType, err error) {
	outcome := service.NewOutcome(op, err)
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err).SetType(gin.ErrorTypePrivate)
	}
	c.AbortWithStatusJSON(status, OutcomeResponse{Success: outcome.Success, Message: outcome.Message})
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrSameAccount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStoreFailure):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
