package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, username, number, balance string) *model.Account {
	t.Helper()
	ctx := context.Background()
	var acc *model.Account
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		u := &model.User{Username: username, Password: "x"}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		acc = &model.Account{OwnerID: u.ID, AccountNumber: number, Balance: decimal.RequireFromString(balance)}
		return tx.Accounts().CreateAccount(ctx, acc)
	})
	require.NoError(t, err)
	return acc
}

func TestStore_CommitAppliesAllWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "100.00")
	b := seed(t, s, "bob", "22222222222222222222", "0")

	var entry *model.LedgerEntry
	err := s.WithinTx(ctx, func(tx repository.Store) error {
		locked, err := tx.Accounts().LockAccounts(ctx, b.ID, a.ID)
		if err != nil {
			return err
		}
		require.Equal(t, a.ID, locked[0].ID)
		if err := tx.Accounts().UpdateAccountBalance(ctx, a.ID, decimal.RequireFromString("60.00")); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateAccountBalance(ctx, b.ID, decimal.RequireFromString("40.00")); err != nil {
			return err
		}
		entry = model.NewEntry(model.Transfer{Source: a.ID, Target: b.ID}, decimal.RequireFromString("40.00"))
		return tx.Ledger().AppendEntry(ctx, entry)
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.TransactionDate.IsZero())

	got, err := s.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "60", got.Balance.String())

	entries, err := s.Ledger().ListEntriesByAccount(ctx, b.ID, model.Page{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].OriginUserName)
	assert.Equal(t, "22222222222222222222", entries[0].TargetAccountNumber)
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "100.00")
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Accounts().LockAccounts(ctx, a.ID); err != nil {
			return err
		}
		if err := tx.Accounts().UpdateAccountBalance(ctx, a.ID, decimal.Zero); err != nil {
			return err
		}
		inTx, err := tx.Accounts().GetAccountByID(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, inTx.Balance.IsZero())
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", got.Balance.String())
	assert.Empty(t, s.Entries())

	// The lock was released: a new transaction can take it immediately.
	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, s.WithinTx(ctx2, func(tx repository.Store) error {
		_, err := tx.Accounts().LockAccounts(ctx2, a.ID)
		return err
	}))
}

func TestStore_RollbackOnPanicReleasesLocks(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "1.00")

	assert.Panics(t, func() {
		_ = s.WithinTx(ctx, func(tx repository.Store) error {
			_, _ = tx.Accounts().LockAccounts(ctx, a.ID)
			panic("crash")
		})
	})

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, s.WithinTx(ctx2, func(tx repository.Store) error {
		_, err := tx.Accounts().LockAccounts(ctx2, a.ID)
		return err
	}))
}

func TestStore_LockWaitHonorsContext(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "1.00")

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = s.WithinTx(ctx, func(tx repository.Store) error {
			_, _ = tx.Accounts().LockAccounts(ctx, a.ID)
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := s.WithinTx(short, func(tx repository.Store) error {
		_, err := tx.Accounts().LockAccounts(short, a.ID)
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(done)
}

func TestStore_UpdateRequiresLock(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "1.00")

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Accounts().UpdateAccountBalance(ctx, a.ID, decimal.Zero)
	})
	assert.Error(t, err)

	err = s.WithinTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Accounts().LockAccounts(ctx, a.ID); err != nil {
			return err
		}
		return tx.Accounts().UpdateAccountBalance(ctx, a.ID, decimal.NewFromInt(-1))
	})
	assert.Error(t, err)
}

func TestStore_Uniqueness(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "0")

	err := s.Users().CreateUser(ctx, &model.User{Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Accounts().CreateAccount(ctx, &model.Account{OwnerID: 99, AccountNumber: a.AccountNumber})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.Accounts().CreateAccount(ctx, &model.Account{OwnerID: a.OwnerID, AccountNumber: "99999999999999999999"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := s.Accounts().AccountNumberExists(ctx, a.AccountNumber)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_UncommittedNumberIsReserved(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	number := "12121212121212121212"

	err := s.WithinTx(ctx, func(tx repository.Store) error {
		require.NoError(t, tx.Accounts().CreateAccount(ctx, &model.Account{OwnerID: 1, AccountNumber: number}))
		exists, err := s.Accounts().AccountNumberExists(ctx, number)
		require.NoError(t, err)
		assert.True(t, exists)
		return errors.New("abort")
	})
	require.Error(t, err)

	exists, err := s.Accounts().AccountNumberExists(ctx, number)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = s.Accounts().GetAccountByNumber(ctx, number)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_AppendEntryRejectsBadShapes(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "0")

	assert.Error(t, s.Ledger().AppendEntry(ctx, &model.LedgerEntry{Amount: decimal.NewFromInt(1)}))
	assert.Error(t, s.Ledger().AppendEntry(ctx, model.NewEntry(model.Deposit{Target: a.ID}, decimal.Zero)))
	assert.ErrorIs(t, s.Ledger().AppendEntry(ctx, model.NewEntry(model.Deposit{Target: 404}, decimal.NewFromInt(1))),
		repository.ErrNotFound)
	assert.Empty(t, s.Entries())
}

func TestStore_ListEntriesPaging(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "0")

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Ledger().AppendEntry(ctx, model.NewEntry(model.Deposit{Target: a.ID}, decimal.NewFromInt(int64(i)))))
	}

	first, err := s.Ledger().ListEntriesByAccount(ctx, a.ID, model.Page{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "5", first[0].Amount.String())
	assert.Equal(t, "4", first[1].Amount.String())

	next, err := s.Ledger().ListEntriesByAccount(ctx, a.ID, model.Page{Limit: 10, BeforeID: first[1].ID})
	require.NoError(t, err)
	require.Len(t, next, 3)
	assert.Equal(t, "3", next[0].Amount.String())
	assert.Equal(t, "1", next[2].Amount.String())
}

func TestStore_ConcurrentLocksSerialize(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	a := seed(t, s, "alice", "11111111111111111111", "0")
	b := seed(t, s, "bob", "22222222222222222222", "0")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids := []int64{a.ID, b.ID}
			if i%2 == 0 {
				ids = []int64{b.ID, a.ID}
			}
			err := s.WithinTx(ctx, func(tx repository.Store) error {
				locked, err := tx.Accounts().LockAccounts(ctx, ids...)
				if err != nil {
					return err
				}
				for _, acc := range locked {
					if err := tx.Accounts().UpdateAccountBalance(ctx, acc.ID, acc.Balance.Add(decimal.NewFromInt(1))); err != nil {
						return err
					}
				}
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	balances := s.Balances()
	assert.Equal(t, "50", balances[a.ID].String())
	assert.Equal(t, "50", balances[b.ID].String())
}
