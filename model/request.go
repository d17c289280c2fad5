// file: model/request.go

package model

import "github.com/shopspring/decimal"

// RegisterRequest defines the payload for opening a user together with its account.
type RegisterRequest struct {
	Username string `json:"user_name" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// AmountRequest is the body of deposit and withdrawal calls.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"50.00"`
}

// TransferRequest moves money to another account identified by its external number.
type TransferRequest struct {
	TargetAccount string          `json:"target_account" validate:"required,len=20,numeric"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string" example:"30.00"`
}
