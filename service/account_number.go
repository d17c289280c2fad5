package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"
)

const DefaultAccountNumberAttempts = 10

// AccountNumberGenerator draws random 20-digit account numbers and keeps
// drawing until the store reports one as unused.
type AccountNumberGenerator struct {
	maxAttempts int
	rand        io.Reader
}

func NewAccountNumberGenerator(maxAttempts int) *AccountNumberGenerator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAccountNumberAttempts
	}
	return &AccountNumberGenerator{maxAttempts: maxAttempts, rand: rand.Reader}
}

// Generate returns a number for which exists reported false.
func (g *AccountNumberGenerator) Generate(ctx context.Context, exists func(ctx context.Context, number string) (bool, error)) (string, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		candidate, err := g.draw()
		if err != nil {
			return "", ErrStorageFailure.With(err)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", ErrStorageFailure.With(err)
		}
		if !taken {
			return candidate, nil
		}
		logger.Log.WithField("attempt", attempt).Warn("Generated account number already in use, retrying")
	}
	return "", ErrAccountNumberExhausted
}

// draw reads one random digit per byte, rejecting bytes >= 250 so that
// every digit is equally likely.
func (g *AccountNumberGenerator) draw() (string, error) {
	out := make([]byte, 0, model.AccountNumberLength)
	buf := make([]byte, model.AccountNumberLength)
	for len(out) < model.AccountNumberLength {
		if _, err := io.ReadFull(g.rand, buf); err != nil {
			return "", fmt.Errorf("read random digits: %w", err)
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			out = append(out, '0'+b%10)
			if len(out) == model.AccountNumberLength {
				break
			}
		}
	}
	return string(out), nil
}
