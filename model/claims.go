package model

import "github.com/golang-jwt/jwt/v5"

type AppClaims struct {
	UserID    int64 `json:"user_id"`
	AccountID int64 `json:"account_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller as handed over by the auth layer.
// AccountID is optional; when present the engine checks it against the
// account it resolves for UserID.
type Identity struct {
	UserID    int64
	AccountID int64
}
