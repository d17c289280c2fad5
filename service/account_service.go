package service

import (
	"context"
	"errors"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransactionPage is one page of ledger history. NextCursor is the value to
// pass as Page.BeforeID for the following page, or zero on the last page.
type TransactionPage struct {
	Transactions []*model.LedgerEntry `json:"transactions"`
	NextCursor   int64                `json:"next_cursor"`
}

// Registration is the outcome of opening a user together with its account.
type Registration struct {
	UserID        int64  `json:"user_id"`
	AccountNumber string `json:"account_number"`
}

// AccountService answers read queries about the caller's account and opens
// new accounts.
type AccountService struct {
	store     repository.Store
	directory *AccountDirectory
	numbers   *AccountNumberGenerator
	opts      EngineOptions
}

func NewAccountService(store repository.Store, directory *AccountDirectory, numbers *AccountNumberGenerator, opts EngineOptions) *AccountService {
	if numbers == nil {
		numbers = NewAccountNumberGenerator(DefaultAccountNumberAttempts)
	}
	return &AccountService{
		store:     store,
		directory: directory,
		numbers:   numbers,
		opts:      opts.withDefaults(),
	}
}

// GetBalance reads the committed balance from the store, bypassing any cache.
func (s *AccountService) GetBalance(ctx context.Context, identity model.Identity) (decimal.Decimal, error) {
	ref, err := resolveOwnAccount(ctx, s.directory, identity, ErrAccountNotFound)
	if err != nil {
		return decimal.Zero, err
	}
	acc, err := s.store.Accounts().GetAccountByID(ctx, ref.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return decimal.Zero, ErrAccountNotFound
		}
		return decimal.Zero, ErrStorageFailure.With(err)
	}
	if acc.OwnerID != identity.UserID {
		return decimal.Zero, ErrPermissionDenied
	}
	return acc.Balance, nil
}

func (s *AccountService) GetAccountNumber(ctx context.Context, identity model.Identity) (string, error) {
	ref, err := resolveOwnAccount(ctx, s.directory, identity, ErrAccountNotFound)
	if err != nil {
		return "", err
	}
	return ref.AccountNumber, nil
}

// ListTransactions returns the caller's ledger history, newest first.
func (s *AccountService) ListTransactions(ctx context.Context, identity model.Identity, page model.Page) (*TransactionPage, error) {
	page = page.Normalize()
	ref, err := resolveOwnAccount(ctx, s.directory, identity, ErrAccountNotFound)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Ledger().ListEntriesByAccount(ctx, ref.ID, page)
	if err != nil {
		return nil, ErrStorageFailure.With(err)
	}
	out := &TransactionPage{Transactions: entries}
	if len(entries) == page.Limit {
		out.NextCursor = entries[len(entries)-1].ID
	}
	return out, nil
}

// errNumberRace marks an account number that was taken between the
// existence check and the insert.
var errNumberRace = errors.New("account number taken concurrently")

// OpenAccount creates a user and its zero-balance account in one transaction.
func (s *AccountService) OpenAccount(ctx context.Context, username, password string) (*Registration, error) {
	log := logger.Log.WithField("username", username)
	log.Info("Opening a new account")

	hash, err := HashPassword(password)
	if err != nil {
		return nil, ErrStorageFailure.With(err)
	}

	for attempt := 1; ; attempt++ {
		var reg *Registration
		err := runInTx(ctx, s.store, s.opts, log, func(ctx context.Context, tx repository.Store) error {
			user := &model.User{Username: username, Password: hash}
			if err := tx.Users().CreateUser(ctx, user); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return ErrUsernameTaken
				}
				return err
			}
			number, err := s.numbers.Generate(ctx, tx.Accounts().AccountNumberExists)
			if err != nil {
				return err
			}
			acc := &model.Account{OwnerID: user.ID, AccountNumber: number, Balance: decimal.Zero}
			if err := tx.Accounts().CreateAccount(ctx, acc); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return ErrStorageFailure.With(errNumberRace)
				}
				return err
			}
			reg = &Registration{UserID: user.ID, AccountNumber: acc.AccountNumber}
			return nil
		})
		if err == nil {
			log.WithFields(logrus.Fields{"user_id": reg.UserID, "account_number": reg.AccountNumber}).Info("Account opened successfully")
			return reg, nil
		}
		if errors.Is(err, errNumberRace) && attempt < s.numbers.maxAttempts {
			log.WithField("attempt", attempt).Warn("Account number collided on insert, regenerating")
			continue
		}
		if errors.Is(err, errNumberRace) {
			err = ErrAccountNumberExhausted.With(err)
		}
		log.WithError(err).Warn("Failed to open account")
		return nil, err
	}
}
