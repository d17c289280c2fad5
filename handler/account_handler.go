package handler

import (
	"net/http"
	"strconv"

	"bank-ledger-api/common"
	"bank-ledger-api/model"
	"bank-ledger-api/service"

	"github.com/shopspring/decimal"
)

type AccountHandler struct {
	service *service.AccountService
}

func NewAccountHandler(service *service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance" swaggertype:"string"`
}

type accountNumberResponse struct {
	AccountNumber string `json:"account_number"`
}

// GetBalance godoc
// @Summary      Get account balance
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  balanceResponse
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/balance [get]
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) *common.AppError {
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}
	balance, err := h.service.GetBalance(r.Context(), identity)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, balanceResponse{Balance: balance})
	return nil
}

// GetAccountNumber godoc
// @Summary      Get the caller's account number
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountNumberResponse
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/account-number [get]
func (h *AccountHandler) GetAccountNumber(w http.ResponseWriter, r *http.Request) *common.AppError {
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}
	number, err := h.service.GetAccountNumber(r.Context(), identity)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, accountNumberResponse{AccountNumber: number})
	return nil
}

// ListTransactions godoc
// @Summary      List ledger history
// @Description  Entries touching the caller's account, newest first. Pass next_cursor as "before" to fetch the following page.
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (default 20, max 100)"
// @Param        before  query  int  false  "Return entries with an id below this cursor"
// @Success      200  {object}  service.TransactionPage
// @Failure      400  {object}  common.AppError "Invalid paging parameters"
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Account not found"
// @Router       /api/transactions [get]
func (h *AccountHandler) ListTransactions(w http.ResponseWriter, r *http.Request) *common.AppError {
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}

	var page model.Page
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return common.NewAppError(http.StatusBadRequest, "limit must be a positive integer", err)
		}
		page.Limit = limit
	}
	if v := q.Get("before"); v != "" {
		before, err := strconv.ParseInt(v, 10, 64)
		if err != nil || before < 1 {
			return common.NewAppError(http.StatusBadRequest, "before must be a positive integer", err)
		}
		page.BeforeID = before
	}

	result, err := h.service.ListTransactions(r.Context(), identity, page)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, result)
	return nil
}
