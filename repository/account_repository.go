package repository

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const accountColumns = `id, owner_id, account_number, balance, created_at`

type AccountRepository struct {
	DB querier
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{DB: db}
}

func scanAccount(row interface{ Scan(...any) error }) (*model.Account, error) {
	acc := &model.Account{}
	if err := row.Scan(&acc.ID, &acc.OwnerID, &acc.AccountNumber, &acc.Balance, &acc.CreatedAt); err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateAccount adds a new account to the database.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"owner_id":       account.OwnerID,
		"account_number": account.AccountNumber,
	})
	log.Info("Executing query to create a new account")

	query := `INSERT INTO accounts (owner_id, account_number, balance) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.DB.QueryRowContext(ctx, query, account.OwnerID, account.AccountNumber, account.Balance).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return classify("create account", err)
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, op, query string, arg any) (*model.Account, error) {
	log := logger.Log.WithField("lookup", arg)
	acc, err := scanAccount(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("Account not found (%s)", op)
		} else {
			log.WithError(err).Errorf("Failed to execute %s query", op)
		}
		return nil, classify(op, err)
	}
	return acc, nil
}

func (r *AccountRepository) GetAccountByID(ctx context.Context, accountID int64) (*model.Account, error) {
	return r.getOne(ctx, "get account by id",
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
}

func (r *AccountRepository) GetAccountByOwnerID(ctx context.Context, ownerID int64) (*model.Account, error) {
	return r.getOne(ctx, "get account by owner",
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = $1`, ownerID)
}

func (r *AccountRepository) GetAccountByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	return r.getOne(ctx, "get account by number",
		`SELECT `+accountColumns+` FROM accounts WHERE account_number = $1`, accountNumber)
}

func (r *AccountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`
	if err := r.DB.QueryRowContext(ctx, query, accountNumber).Scan(&exists); err != nil {
		logger.Log.WithError(err).Error("Failed to execute account number existence query")
		return false, classify("check account number", err)
	}
	return exists, nil
}

// GetAccountForUpdate reads one account and holds its row lock until the
// surrounding transaction ends.
func (r *AccountRepository) GetAccountForUpdate(ctx context.Context, accountID int64) (*model.Account, error) {
	return r.getOne(ctx, "get account for update",
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1 FOR UPDATE`, accountID)
}

func (r *AccountRepository) LockAccounts(ctx context.Context, accountIDs ...int64) ([]*model.Account, error) {
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	logger.Log.WithField("account_ids", ids).Debug("Locking accounts in ascending id order")

	accounts := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		acc, err := r.GetAccountForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

func (r *AccountRepository) UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id":  accountID,
		"new_balance": newBalance,
	})
	log.Info("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, newBalance, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update account balance query")
		return classify("update account balance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update account balance rows affected", err)
	}
	if n == 0 {
		return classify("update account balance", sql.ErrNoRows)
	}
	return nil
}
