package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountNumberLength is the number of decimal digits in an external account number.
const AccountNumberLength = 20

type Account struct {
	ID            int64           `json:"id"`
	OwnerID       int64           `json:"owner_id"`
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AccountRef is the immutable part of an account: who owns it and how it is addressed.
type AccountRef struct {
	ID            int64  `json:"id"`
	OwnerID       int64  `json:"owner_id"`
	AccountNumber string `json:"account_number"`
}

func (a *Account) Ref() AccountRef {
	return AccountRef{ID: a.ID, OwnerID: a.OwnerID, AccountNumber: a.AccountNumber}
}

// IsAccountNumber reports whether s has the shape of an external account number.
func IsAccountNumber(s string) bool {
	if len(s) != AccountNumberLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
