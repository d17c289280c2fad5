package repository

import (
	"context"
	"database/sql"

	"bank-ledger-api/logger"
	"bank-ledger-api/model"

	"github.com/sirupsen/logrus"
)

// LedgerRepository implements ILedgerRepository on the transactions table.
// It only ever inserts and reads; entries are immutable.
type LedgerRepository struct {
	DB querier
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

func (r *LedgerRepository) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	log := logger.Log.WithFields(logrus.Fields{
		"origin_account": entry.OriginAccountID,
		"target_account": entry.TargetAccountID,
		"amount":         entry.Amount,
	})
	log.Info("Executing query to append a ledger entry")

	query := `INSERT INTO transactions (origin_account, target_account, amount) VALUES ($1, $2, $3) RETURNING id, transaction_date`
	err := r.DB.QueryRowContext(ctx, query, entry.OriginAccountID, entry.TargetAccountID, entry.Amount).Scan(&entry.ID, &entry.TransactionDate)
	if err != nil {
		log.WithError(err).Error("Failed to execute append ledger entry query")
		return classify("append ledger entry", err)
	}
	return nil
}

// ListEntriesByAccount returns entries where the account is origin or target,
// newest first, together with the counterparty numbers and user names.
func (r *LedgerRepository) ListEntriesByAccount(ctx context.Context, accountID int64, page model.Page) ([]*model.LedgerEntry, error) {
	page = page.Normalize()
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"limit":      page.Limit,
		"before_id":  page.BeforeID,
	})
	log.Info("Executing query to list ledger entries by account")

	query := `
		SELECT t.id, t.origin_account, t.target_account, t.amount, t.transaction_date,
		       COALESCE(a1.account_number, ''), COALESCE(a2.account_number, ''),
		       COALESCE(u1.username, ''), COALESCE(u2.username, '')
		FROM transactions t
		LEFT JOIN accounts a1 ON t.origin_account = a1.id
		LEFT JOIN accounts a2 ON t.target_account = a2.id
		LEFT JOIN users u1 ON a1.owner_id = u1.id
		LEFT JOIN users u2 ON a2.owner_id = u2.id
		WHERE (t.origin_account = $1 OR t.target_account = $1)
		  AND ($2::BIGINT = 0 OR t.id < $2::BIGINT)
		ORDER BY t.id DESC
		LIMIT $3`

	rows, err := r.DB.QueryContext(ctx, query, accountID, page.BeforeID, page.Limit)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for ledger entries by account")
		return nil, classify("list ledger entries", err)
	}
	defer rows.Close()

	entries := make([]*model.LedgerEntry, 0, page.Limit)
	for rows.Next() {
		var e model.LedgerEntry
		if err := rows.Scan(&e.ID, &e.OriginAccountID, &e.TargetAccountID, &e.Amount, &e.TransactionDate,
			&e.OriginAccountNumber, &e.TargetAccountNumber, &e.OriginUserName, &e.TargetUserName); err != nil {
			log.WithError(err).Error("Failed to scan ledger entry row")
			return nil, classify("scan ledger entry", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate ledger entries", err)
	}
	return entries, nil
}
