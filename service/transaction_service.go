package service

import (
	"context"
	"errors"
	"time"

	"bank-ledger-api/events"
	"bank-ledger-api/logger"
	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Stages an operation passes through, as logged under the "stage" field.
const (
	stageReceived   = "received"
	stageValidated  = "validated"
	stageApplied    = "applied"
	stageCommitted  = "committed"
	stageRejected   = "rejected"
	stageRolledBack = "rolled_back"
)

const (
	DefaultMaxConflictRetries = 1
	DefaultOperationTimeout   = 5 * time.Second
)

type EngineOptions struct {
	// MaxConflictRetries is how many times a serialization conflict is
	// retried before the operation fails.
	MaxConflictRetries int
	// OperationTimeout bounds each attempt, including lock waits.
	OperationTimeout time.Duration
}

func (o EngineOptions) withDefaults() EngineOptions {
	if o.MaxConflictRetries < 0 {
		o.MaxConflictRetries = 0
	}
	if o.OperationTimeout <= 0 {
		o.OperationTimeout = DefaultOperationTimeout
	}
	return o
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{MaxConflictRetries: DefaultMaxConflictRetries, OperationTimeout: DefaultOperationTimeout}
}

// MovementResult is returned by deposits and withdrawals.
type MovementResult struct {
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	NewBalance    decimal.Decimal `json:"new_balance" swaggertype:"string"`
	TransactionID int64           `json:"transaction_id"`
}

// TransferResult reports the source account's balance after a transfer.
type TransferResult struct {
	Amount        decimal.Decimal `json:"amount" swaggertype:"string"`
	NewBalance    decimal.Decimal `json:"new_balance" swaggertype:"string"`
	TransactionID int64           `json:"transaction_id"`
}

// TransactionService applies deposits, withdrawals and transfers. Every
// balance change and its ledger entry commit together or not at all.
type TransactionService struct {
	store     repository.Store
	directory *AccountDirectory
	publisher events.Publisher
	opts      EngineOptions
}

func NewTransactionService(store repository.Store, directory *AccountDirectory, publisher events.Publisher, opts EngineOptions) *TransactionService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TransactionService{
		store:     store,
		directory: directory,
		publisher: publisher,
		opts:      opts.withDefaults(),
	}
}

func (s *TransactionService) Deposit(ctx context.Context, identity model.Identity, amount decimal.Decimal) (*MovementResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"operation": model.KindDeposit,
		"user_id":   identity.UserID,
	})
	log.WithField("stage", stageReceived).Info("Starting deposit")

	// The amount is only logged once its size is known to be bounded.
	if err := model.ValidateAmount(amount); err != nil {
		return nil, finish(log, ErrInvalidAmount.With(err))
	}
	log = log.WithField("amount", amount)
	ref, err := resolveOwnAccount(ctx, s.directory, identity, ErrAccountNotFound)
	if err != nil {
		return nil, finish(log, err)
	}
	log = log.WithField("account_id", ref.ID)
	log.WithField("stage", stageValidated).Debug("Deposit validated")

	var (
		entry  *model.LedgerEntry
		result *MovementResult
	)
	err = runInTx(ctx, s.store, s.opts, log, func(ctx context.Context, tx repository.Store) error {
		acc, err := lockOwnAccount(ctx, tx, identity, ref.ID)
		if err != nil {
			return err
		}
		newBalance := acc.Balance.Add(amount)
		if !model.FitsBalance(newBalance) {
			return ErrBalanceLimitExceeded
		}
		if err := tx.Accounts().UpdateAccountBalance(ctx, acc.ID, newBalance); err != nil {
			return err
		}
		entry = model.NewEntry(model.Deposit{Target: acc.ID}, amount)
		if err := tx.Ledger().AppendEntry(ctx, entry); err != nil {
			return err
		}
		log.WithField("stage", stageApplied).Debug("Deposit applied")
		result = &MovementResult{AccountNumber: acc.AccountNumber, Amount: amount, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, finish(log, err)
	}

	result.TransactionID = entry.ID
	log.WithFields(logrus.Fields{"stage": stageCommitted, "transaction_id": entry.ID}).Info("Deposit completed successfully")
	s.publish(ctx, events.NewEntryRecorded(entry, model.KindDeposit, "", ref.AccountNumber))
	return result, nil
}

func (s *TransactionService) Withdraw(ctx context.Context, identity model.Identity, amount decimal.Decimal) (*MovementResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"operation": model.KindWithdrawal,
		"user_id":   identity.UserID,
	})
	log.WithField("stage", stageReceived).Info("Starting withdrawal")

	if err := model.ValidateAmount(amount); err != nil {
		return nil, finish(log, ErrInvalidAmount.With(err))
	}
	log = log.WithField("amount", amount)
	ref, err := resolveOwnAccount(ctx, s.directory, identity, ErrAccountNotFound)
	if err != nil {
		return nil, finish(log, err)
	}
	log = log.WithField("account_id", ref.ID)
	log.WithField("stage", stageValidated).Debug("Withdrawal validated")

	var (
		entry  *model.LedgerEntry
		result *MovementResult
	)
	err = runInTx(ctx, s.store, s.opts, log, func(ctx context.Context, tx repository.Store) error {
		acc, err := lockOwnAccount(ctx, tx, identity, ref.ID)
		if err != nil {
			return err
		}
		if acc.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		newBalance := acc.Balance.Sub(amount)
		if err := tx.Accounts().UpdateAccountBalance(ctx, acc.ID, newBalance); err != nil {
			return err
		}
		entry = model.NewEntry(model.Withdrawal{Source: acc.ID}, amount)
		if err := tx.Ledger().AppendEntry(ctx, entry); err != nil {
			return err
		}
		log.WithField("stage", stageApplied).Debug("Withdrawal applied")
		result = &MovementResult{AccountNumber: acc.AccountNumber, Amount: amount, NewBalance: newBalance}
		return nil
	})
	if err != nil {
		return nil, finish(log, err)
	}

	result.TransactionID = entry.ID
	log.WithFields(logrus.Fields{"stage": stageCommitted, "transaction_id": entry.ID}).Info("Withdrawal completed successfully")
	s.publish(ctx, events.NewEntryRecorded(entry, model.KindWithdrawal, ref.AccountNumber, ""))
	return result, nil
}

// Transfer moves amount from the caller's account to the account numbered
// destination. Both rows are locked in ascending id order.
func (s *TransactionService) Transfer(ctx context.Context, identity model.Identity, destination string, amount decimal.Decimal) (*TransferResult, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"operation":      model.KindTransfer,
		"user_id":        identity.UserID,
		"target_account": destination,
	})
	log.WithField("stage", stageReceived).Info("Starting money transfer process")

	if err := model.ValidateAmount(amount); err != nil {
		return nil, finish(log, ErrInvalidAmount.With(err))
	}
	log = log.WithField("amount", amount)
	if !model.IsAccountNumber(destination) {
		return nil, finish(log, ErrInvalidDestination)
	}
	src, err := resolveOwnAccount(ctx, s.directory, identity, ErrSourceAccountNotFound)
	if err != nil {
		return nil, finish(log, err)
	}
	dst, err := s.directory.ByNumber(ctx, destination)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, finish(log, ErrDestinationAccountNotFound)
		}
		return nil, finish(log, ErrStorageFailure.With(err))
	}
	if src.ID == dst.ID {
		return nil, finish(log, ErrSameAccountTransfer)
	}
	log = log.WithFields(logrus.Fields{"from_account_id": src.ID, "to_account_id": dst.ID})
	log.WithField("stage", stageValidated).Debug("Transfer validated")

	var (
		entry  *model.LedgerEntry
		result *TransferResult
	)
	err = runInTx(ctx, s.store, s.opts, log, func(ctx context.Context, tx repository.Store) error {
		locked, err := tx.Accounts().LockAccounts(ctx, src.ID, dst.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAccountNotFound.With(err)
			}
			return err
		}
		var from, to *model.Account
		for _, acc := range locked {
			switch acc.ID {
			case src.ID:
				from = acc
			case dst.ID:
				to = acc
			}
		}
		if from == nil {
			return ErrSourceAccountNotFound
		}
		if to == nil {
			return ErrDestinationAccountNotFound
		}
		if from.OwnerID != identity.UserID {
			return ErrPermissionDenied
		}
		if from.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		fromBalance := from.Balance.Sub(amount)
		toBalance := to.Balance.Add(amount)
		if !model.FitsBalance(toBalance) {
			return ErrBalanceLimitExceeded
		}

		if err := tx.Accounts().UpdateAccountBalance(ctx, from.ID, fromBalance); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateAccountBalance(ctx, to.ID, toBalance); err != nil {
			return err
		}
		entry = model.NewEntry(model.Transfer{Source: from.ID, Target: to.ID}, amount)
		if err := tx.Ledger().AppendEntry(ctx, entry); err != nil {
			return err
		}
		log.WithField("stage", stageApplied).Debug("Transfer applied")
		result = &TransferResult{Amount: amount, NewBalance: fromBalance}
		return nil
	})
	if err != nil {
		return nil, finish(log, err)
	}

	result.TransactionID = entry.ID
	log.WithFields(logrus.Fields{"stage": stageCommitted, "transaction_id": entry.ID}).Info("Transaction completed successfully")
	s.publish(ctx, events.NewEntryRecorded(entry, model.KindTransfer, src.AccountNumber, dst.AccountNumber))
	return result, nil
}

// publish runs after commit; a failure here is logged and otherwise ignored.
func (s *TransactionService) publish(ctx context.Context, event events.EntryRecorded) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Log.WithError(err).WithField("entry_id", event.EntryID).Warn("Failed to publish ledger event")
	}
}

// resolveOwnAccount finds the caller's account, checking the optional
// account claim against it.
func resolveOwnAccount(ctx context.Context, dir *AccountDirectory, identity model.Identity, notFound *Error) (model.AccountRef, error) {
	if identity.UserID <= 0 {
		return model.AccountRef{}, ErrPermissionDenied
	}
	ref, err := dir.ByOwner(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.AccountRef{}, notFound
		}
		return model.AccountRef{}, ErrStorageFailure.With(err)
	}
	if identity.AccountID != 0 && identity.AccountID != ref.ID {
		return model.AccountRef{}, ErrPermissionDenied
	}
	return ref, nil
}

// lockOwnAccount locks accountID and re-checks ownership on the locked row.
func lockOwnAccount(ctx context.Context, tx repository.Store, identity model.Identity, accountID int64) (*model.Account, error) {
	locked, err := tx.Accounts().LockAccounts(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound.With(err)
		}
		return nil, err
	}
	acc := locked[0]
	if acc.OwnerID != identity.UserID {
		return nil, ErrPermissionDenied
	}
	return acc, nil
}

// runInTx runs fn in a transaction bounded by opts.OperationTimeout and
// retries it on serialization conflicts.
func runInTx(ctx context.Context, store repository.Store, opts EngineOptions, log *logrus.Entry, fn func(ctx context.Context, tx repository.Store) error) error {
	for attempt := 0; ; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, opts.OperationTimeout)
		err := store.WithinTx(attemptCtx, func(tx repository.Store) error {
			return fn(attemptCtx, tx)
		})
		cancel()
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrConflict) && attempt < opts.MaxConflictRetries {
			log.WithError(err).WithField("attempt", attempt+1).Warn("Transaction conflict, retrying")
			continue
		}
		return translate(err)
	}
}

// translate turns anything that is not already a service error into a
// storage failure.
func translate(err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, repository.ErrConflict) {
		return ErrStorageFailure.With(ErrConflict.With(err))
	}
	return ErrStorageFailure.With(err)
}

// finish logs the terminal stage of a failed operation and returns err.
func finish(log *logrus.Entry, err error) error {
	if KindOf(err) == KindStorageFailure {
		log.WithError(err).WithField("stage", stageRolledBack).Error("Operation rolled back")
	} else {
		log.WithError(err).WithField("stage", stageRejected).Warn("Operation rejected")
	}
	return err
}
