package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"bank-ledger-api/logger"
)

// PostgresStore is the Store backed by database/sql and lib/pq.
type PostgresStore struct {
	db     *sql.DB
	q      querier
	txOpts *sql.TxOptions
	inTx   bool
}

// NewPostgresStore wraps an open pool. isolation is one of
// "serializable", "repeatable_read" or "read_committed".
func NewPostgresStore(db *sql.DB, isolation string) *PostgresStore {
	return &PostgresStore{
		db:     db,
		q:      db,
		txOpts: &sql.TxOptions{Isolation: ParseIsolation(isolation)},
	}
}

func ParseIsolation(name string) sql.IsolationLevel {
	switch strings.ToLower(strings.ReplaceAll(name, " ", "_")) {
	case "read_committed":
		return sql.LevelReadCommitted
	case "repeatable_read":
		return sql.LevelRepeatableRead
	default:
		return sql.LevelSerializable
	}
}

func (s *PostgresStore) Accounts() IAccountRepository { return &AccountRepository{DB: s.q} }
func (s *PostgresStore) Ledger() ILedgerRepository    { return &LedgerRepository{DB: s.q} }
func (s *PostgresStore) Users() IUserRepository       { return &UserRepository{DB: s.q} }

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, s.txOpts)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(&PostgresStore{db: s.db, q: tx, txOpts: s.txOpts, inTx: true}); err != nil {
		logger.Log.WithError(err).Debug("Rolling back transaction")
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)

// String is used in startup logs.
func (s *PostgresStore) String() string {
	return fmt.Sprintf("postgres(isolation=%s)", s.txOpts.Isolation)
}
