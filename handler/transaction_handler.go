package handler

import (
	"net/http"

	"bank-ledger-api/common"
	"bank-ledger-api/model"
	"bank-ledger-api/service"
)

// TransactionHandler holds dependencies for balance-changing handlers.
type TransactionHandler struct {
	service *service.TransactionService
}

func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// Deposit godoc
// @Summary      Deposit money
// @Description  Credits the caller's account and records a deposit ledger entry.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        deposit body model.AmountRequest true "Amount to deposit"
// @Success      200  {object}  service.MovementResult
// @Failure      400  {object}  common.AppError "Invalid amount"
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      500  {object}  common.AppError "Storage failure"
// @Router       /api/deposit [post]
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AmountRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}

	result, err := h.service.Deposit(r.Context(), identity, req.Amount)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, result)
	return nil
}

// Withdraw godoc
// @Summary      Withdraw money
// @Description  Debits the caller's account if the balance covers the amount.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        withdrawal body model.AmountRequest true "Amount to withdraw"
// @Success      200  {object}  service.MovementResult
// @Failure      400  {object}  common.AppError "Invalid amount"
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Account not found"
// @Failure      409  {object}  common.AppError "Insufficient funds"
// @Failure      500  {object}  common.AppError "Storage failure"
// @Router       /api/withdrawal [post]
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.AmountRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}

	result, err := h.service.Withdraw(r.Context(), identity, req.Amount)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, result)
	return nil
}

// Transfer godoc
// @Summary      Transfer money to another account
// @Description  Moves the amount from the caller's account to the account with the given 20-digit number.
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        transfer body model.TransferRequest true "Destination and amount"
// @Success      200  {object}  service.TransferResult
// @Failure      400  {object}  common.AppError "Invalid amount, malformed destination or self transfer"
// @Failure      401  {object}  common.AppError "Missing or invalid token"
// @Failure      404  {object}  common.AppError "Source or destination account not found"
// @Failure      409  {object}  common.AppError "Insufficient funds"
// @Failure      500  {object}  common.AppError "Storage failure"
// @Router       /api/transfer [post]
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.TransferRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}
	identity, appErr := identityOrError(r)
	if appErr != nil {
		return appErr
	}

	result, err := h.service.Transfer(r.Context(), identity, req.TargetAccount, req.Amount)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusOK, result)
	return nil
}
