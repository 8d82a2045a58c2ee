// Package walletdelivery manages delivery layer of wallets.
package walletdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-wallet/internal/domain"
	"github.com/go-petr/pet-wallet/pkg/currencypkg"
	"github.com/go-petr/pet-wallet/pkg/errorspkg"
	"github.com/go-petr/pet-wallet/pkg/web"
)

// Service provides service layer interface needed by wallet delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package walletdelivery
type Service interface {
	Deposit(ctx context.Context, userID string, amount int64, currency string) (string, error)
	Withdraw(ctx context.Context, userID string, amount int64, currency string) (string, error)
	GetBalances(ctx context.Context, userID string) (map[string]int64, error)
	History(ctx context.Context, userID, currency string, pageID, pageSize int32) ([]domain.Transaction, error)
	Audit(ctx context.Context, userID string) (domain.AuditReport, error)
}

// Handler facilitates wallet delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns wallet handler.
func NewHandler(ws Service) Handler {
	return Handler{service: ws}
}

type walletURI struct {
	UserID string `uri:"user_id" binding:"required,max=64"`
}

// Currency and amount are checked by the ledger, so that rejections come back as messages.
type operationRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func bindingErrorMsg(err error) string {
	var ve validator.ValidationErrors

	if errors.As(err, &ve) {
		field := ve[0]
		return field.Field() + web.GetErrorMsg(field)
	}

	return err.Error()
}

type operation func(ctx context.Context, userID string, amount int64, currency string) (string, error)

func (h *Handler) handleOperation(gctx *gin.Context, op operation) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri walletURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req operationRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	msg, err := op(ctx, uri.UserID, req.Amount, req.Currency)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Message(msg))
}

// Deposit handles http request to deposit money.
func (h *Handler) Deposit(gctx *gin.Context) {
	h.handleOperation(gctx, h.service.Deposit)
}

// Withdraw handles http request to withdraw money.
func (h *Handler) Withdraw(gctx *gin.Context) {
	h.handleOperation(gctx, h.service.Withdraw)
}

type dataBalances struct {
	Balances  map[string]int64  `json:"balances"`
	Formatted map[string]string `json:"formatted"`
}
type responseBalances struct {
	Data dataBalances `json:"data"`
}

// Balances handles http request to get every balance of the user.
func (h *Handler) Balances(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri walletURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	balances, err := h.service.GetBalances(ctx, uri.UserID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	formatted := make(map[string]string, len(balances))
	for c, amount := range balances {
		formatted[c] = currencypkg.Format(amount)
	}

	res := responseBalances{
		Data: dataBalances{
			Balances:  balances,
			Formatted: formatted,
		},
	}

	gctx.JSON(http.StatusOK, res)
}

type historyRequest struct {
	Currency string `form:"currency" binding:"omitempty,currency"`
	PageID   int32  `form:"page_id" binding:"required,min=1"`
	PageSize int32  `form:"page_size" binding:"required,min=1,max=100"`
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}
type responseTransactions struct {
	Data dataTransactions `json:"data"`
}

// History handles http request to list the transactions of the user.
func (h *Handler) History(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri walletURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	var req historyRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	transactions, err := h.service.History(ctx, uri.UserID, req.Currency, req.PageID, req.PageSize)
	if err != nil {
		switch err {
		case domain.ErrUnknownCurrency:
			gctx.JSON(http.StatusBadRequest, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := responseTransactions{
		Data: dataTransactions{transactions},
	}

	gctx.JSON(http.StatusOK, res)
}

type dataAudit struct {
	Report domain.AuditReport `json:"report"`
}
type responseAudit struct {
	Data dataAudit `json:"data"`
}

// Audit handles http request to reconcile the balances of the user with the log.
func (h *Handler) Audit(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri walletURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: bindingErrorMsg(err)})

		return
	}

	report, err := h.service.Audit(ctx, uri.UserID)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, responseAudit{Data: dataAudit{report}})
}
