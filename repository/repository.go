package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-ledger-api/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrConflict  = errors.New("transaction conflict")
	ErrDuplicate = errors.New("duplicate key")
)

// IAccountRepository defines the contract for account persistence.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error)
	GetAccountByOwnerID(ctx context.Context, ownerID int64) (*model.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (*model.Account, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)
	// LockAccounts locks every listed account for the rest of the transaction,
	// always in ascending id order, and returns them in that order.
	LockAccounts(ctx context.Context, accountIDs ...int64) ([]*model.Account, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error
}

// ILedgerRepository defines the contract for the append-only ledger.
type ILedgerRepository interface {
	AppendEntry(ctx context.Context, entry *model.LedgerEntry) error
	ListEntriesByAccount(ctx context.Context, accountID int64, page model.Page) ([]*model.LedgerEntry, error)
}

// IUserRepository defines the contract for user records.
type IUserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
}

// Store groups the repositories over one backing store. WithinTx runs fn
// against a Store bound to a single transaction: it commits when fn returns
// nil and rolls back on any error, panic or context cancellation.
type Store interface {
	Accounts() IAccountRepository
	Ledger() ILedgerRepository
	Users() IUserRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// classify maps driver errors onto the repository sentinels.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
		case "23505":
			return fmt.Errorf("%s: %w: %w", op, ErrDuplicate, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
