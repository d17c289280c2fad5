package service

import (
	"fmt"
	"time"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is lowered in tests.
var passwordCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), nil
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// GenerateJWT signs an HS256 token for identity. Production tokens come from
// the identity provider; this is for local use and tests.
func GenerateJWT(secret []byte, identity model.Identity, ttl time.Duration) (string, error) {
	claims := &model.AppClaims{
		UserID:    identity.UserID,
		AccountID: identity.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(identity.UserID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", identity.UserID).Error("Failed to sign JWT")
		return "", fmt.Errorf("failed to sign token string: %w", err)
	}
	return tokenString, nil
}
