package handler

import (
	"net/http"

	"bank-ledger-api/common"
	"bank-ledger-api/model"
	"bank-ledger-api/service"
)

type UserHandler struct {
	accounts *service.AccountService
}

func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// Register godoc
// @Summary      Register a user
// @Description  Creates the user and its zero-balance account in one transaction.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        user body model.RegisterRequest true "Credentials"
// @Success      201  {object}  service.Registration
// @Failure      400  {object}  common.AppError "Invalid payload or username taken"
// @Failure      500  {object}  common.AppError "Storage failure"
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(w, r, &req); err != nil {
		return err
	}

	reg, err := h.accounts.OpenAccount(r.Context(), req.Username, req.Password)
	if err != nil {
		return common.FromServiceError(err)
	}
	writeJSON(w, http.StatusCreated, reg)
	return nil
}
