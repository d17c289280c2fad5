package service

import (
	"context"
	"sync"
	"testing"

	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_OpenAccount(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	reg, err := env.accounts.OpenAccount(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.NotZero(t, reg.UserID)
	assert.True(t, model.IsAccountNumber(reg.AccountNumber))

	acc, err := env.store.Accounts().GetAccountByNumber(ctx, reg.AccountNumber)
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, acc.OwnerID)
	assert.True(t, acc.Balance.IsZero())

	number, err := env.accounts.GetAccountNumber(ctx, model.Identity{UserID: reg.UserID})
	require.NoError(t, err)
	assert.Equal(t, reg.AccountNumber, number)
}

func TestAccountService_OpenAccount_UsernameTaken(t *testing.T) {
	env := defaultEnv(t)
	ctx := context.Background()

	_, err := env.accounts.OpenAccount(ctx, "alice", "password123")
	require.NoError(t, err)

	_, err = env.accounts.OpenAccount(ctx, "alice", "another-password")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Len(t, env.mem.Balances(), 1)
}

func TestAccountService_OpenAccount_NumberRace(t *testing.T) {
	t.Run("regenerates after insert collision", func(t *testing.T) {
		f := &faults{duplicateAccounts: 2}
		env := newTestEnv(t, f, nil, DefaultEngineOptions())

		reg, err := env.accounts.OpenAccount(context.Background(), "alice", "password123")
		require.NoError(t, err)
		assert.True(t, model.IsAccountNumber(reg.AccountNumber))
		assert.Len(t, env.mem.Balances(), 1)
	})

	t.Run("gives up at the attempt cap", func(t *testing.T) {
		f := &faults{duplicateAccounts: 100}
		env := newTestEnv(t, f, nil, DefaultEngineOptions())

		_, err := env.accounts.OpenAccount(context.Background(), "alice", "password123")
		assert.ErrorIs(t, err, ErrAccountNumberExhausted)
		assert.Equal(t, KindStorageFailure, KindOf(err))
		// The user insert was rolled back with the failed account insert.
		assert.Empty(t, env.mem.Balances())

		f.duplicateAccounts = 0
		_, err = env.accounts.OpenAccount(context.Background(), "alice", "password123")
		assert.NoError(t, err)
	})
}

func TestAccountService_ConcurrentRegistrationsGetDistinctNumbers(t *testing.T) {
	env := defaultEnv(t)

	const n = 20
	numbers := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reg, err := env.accounts.OpenAccount(context.Background(), "user-"+string(rune('a'+i)), "password123")
			if assert.NoError(t, err) {
				numbers[i] = reg.AccountNumber
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, num := range numbers {
		assert.False(t, seen[num], "duplicate account number %s", num)
		seen[num] = true
	}
}

func TestAccountService_GetBalance_ReadAfterWrite(t *testing.T) {
	env := defaultEnv(t)
	alice, _ := env.open(t, "alice")
	ctx := context.Background()

	for i, step := range []string{"10.00", "0.01", "99.99"} {
		res, err := env.txs.Deposit(ctx, alice, dec(step))
		require.NoError(t, err)
		bal, err := env.accounts.GetBalance(ctx, alice)
		require.NoError(t, err, "step %d", i)
		assert.True(t, res.NewBalance.Equal(bal))
	}
	assert.True(t, dec("110").Equal(env.balance(t, alice)))

	_, err := env.accounts.GetBalance(ctx, model.Identity{UserID: 404})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountService_ListTransactions(t *testing.T) {
	env := defaultEnv(t)
	alice, aliceRef := env.open(t, "alice")
	bob, bobRef := env.open(t, "bob")
	ctx := context.Background()

	env.fund(t, alice, "100.00")
	_, err := env.txs.Transfer(ctx, alice, bobRef.AccountNumber, dec("30.00"))
	require.NoError(t, err)
	_, err = env.txs.Withdraw(ctx, bob, dec("5.00"))
	require.NoError(t, err)
	_, err = env.txs.Withdraw(ctx, alice, dec("1.00"))
	require.NoError(t, err)

	t.Run("newest first with counterparties", func(t *testing.T) {
		page, err := env.accounts.ListTransactions(ctx, alice, model.Page{})
		require.NoError(t, err)
		require.Len(t, page.Transactions, 3)
		assert.Zero(t, page.NextCursor)

		withdrawal, transfer, deposit := page.Transactions[0], page.Transactions[1], page.Transactions[2]
		assert.Nil(t, withdrawal.TargetAccountID)
		assert.Equal(t, "bob", transfer.TargetUserName)
		assert.Equal(t, bobRef.AccountNumber, transfer.TargetAccountNumber)
		assert.Equal(t, aliceRef.AccountNumber, transfer.OriginAccountNumber)
		assert.Nil(t, deposit.OriginAccountID)
	})

	t.Run("bob sees only his entries", func(t *testing.T) {
		page, err := env.accounts.ListTransactions(ctx, bob, model.Page{})
		require.NoError(t, err)
		assert.Len(t, page.Transactions, 2)
	})

	t.Run("cursor pagination", func(t *testing.T) {
		first, err := env.accounts.ListTransactions(ctx, alice, model.Page{Limit: 2})
		require.NoError(t, err)
		require.Len(t, first.Transactions, 2)
		require.NotZero(t, first.NextCursor)

		second, err := env.accounts.ListTransactions(ctx, alice, model.Page{Limit: 2, BeforeID: first.NextCursor})
		require.NoError(t, err)
		require.Len(t, second.Transactions, 1)
		assert.Nil(t, second.Transactions[0].OriginAccountID)
		assert.Zero(t, second.NextCursor)
	})
}

func TestAccountService_StoreErrorsAreStorageFailures(t *testing.T) {
	env := defaultEnv(t)
	alice, _ := env.open(t, "alice")

	svc := NewAccountService(brokenLedger{env.store}, env.directory, nil, DefaultEngineOptions())
	_, err := svc.ListTransactions(context.Background(), alice, model.Page{})
	assert.ErrorIs(t, err, ErrStorageFailure)
}

type brokenLedger struct{ repository.Store }

func (b brokenLedger) Ledger() repository.ILedgerRepository { return failingLedger{} }

type failingLedger struct{ repository.ILedgerRepository }

func (failingLedger) ListEntriesByAccount(context.Context, int64, model.Page) ([]*model.LedgerEntry, error) {
	return nil, context.DeadlineExceeded
}
