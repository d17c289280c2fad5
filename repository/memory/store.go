// Package memory is an in-process implementation of repository.Store.
//
// Each transaction holds per-account locks (taken in ascending id order by
// LockAccounts) until it ends, and buffers its writes; commit applies them
// all at once under the store mutex, rollback drops them. Lock waits honor
// context cancellation.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"bank-ledger-api/model"
	"bank-ledger-api/repository"

	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.RWMutex

	accounts   map[int64]model.Account
	byOwner    map[int64]int64
	byNumber   map[string]int64
	users      map[int64]model.User
	byUsername map[string]int64
	entries    []model.LedgerEntry

	// Keys claimed by transactions that have not finished yet.
	reservedNumbers   map[string]struct{}
	reservedOwners    map[int64]struct{}
	reservedUsernames map[string]struct{}

	seqAccount, seqUser, seqEntry int64
	lastDate                      time.Time

	locksMu sync.Mutex
	locks   map[int64]chan struct{}

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		accounts:          make(map[int64]model.Account),
		byOwner:           make(map[int64]int64),
		byNumber:          make(map[string]int64),
		users:             make(map[int64]model.User),
		byUsername:        make(map[string]int64),
		reservedNumbers:   make(map[string]struct{}),
		reservedOwners:    make(map[int64]struct{}),
		reservedUsernames: make(map[string]struct{}),
		locks:             make(map[int64]chan struct{}),
		now:               time.Now,
	}
}

type txState struct {
	held     map[int64]struct{}
	balances map[int64]decimal.Decimal
	accounts map[int64]*model.Account
	users    []*model.User
	entries  []*model.LedgerEntry

	numbers   []string
	owners    []int64
	usernames []string
}

func newTxState() *txState {
	return &txState{
		held:     make(map[int64]struct{}),
		balances: make(map[int64]decimal.Decimal),
		accounts: make(map[int64]*model.Account),
	}
}

// repo implements all repository interfaces. A nil tx means every write runs
// in its own short transaction.
type repo struct {
	s  *Store
	tx *txState
}

func (s *Store) Accounts() repository.IAccountRepository { return repo{s: s} }
func (s *Store) Ledger() repository.ILedgerRepository    { return repo{s: s} }
func (s *Store) Users() repository.IUserRepository       { return repo{s: s} }

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	tx := newTxState()
	committed := false
	defer func() {
		if !committed {
			s.rollback(tx)
		}
	}()

	if err := fn(txStore{s: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.commit(tx)
	committed = true
	return nil
}

type txStore struct {
	s  *Store
	tx *txState
}

func (t txStore) Accounts() repository.IAccountRepository { return repo(t) }
func (t txStore) Ledger() repository.ILedgerRepository    { return repo(t) }
func (t txStore) Users() repository.IUserRepository       { return repo(t) }

func (t txStore) WithinTx(_ context.Context, fn func(tx repository.Store) error) error {
	return fn(t)
}

func (s *Store) lockFor(id int64) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

func (s *Store) acquire(ctx context.Context, id int64) error {
	select {
	case s.lockFor(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("acquire lock on account %d: %w", id, ctx.Err())
	}
}

func (s *Store) release(tx *txState) {
	for id := range tx.held {
		<-s.lockFor(id)
	}
	clear(tx.held)
}

func (s *Store) commit(tx *txState) {
	s.mu.Lock()
	for _, u := range tx.users {
		s.users[u.ID] = *u
		s.byUsername[u.Username] = u.ID
	}
	for _, a := range tx.accounts {
		s.accounts[a.ID] = *a
		s.byOwner[a.OwnerID] = a.ID
		s.byNumber[a.AccountNumber] = a.ID
	}
	for id, bal := range tx.balances {
		acc := s.accounts[id]
		acc.Balance = bal
		s.accounts[id] = acc
	}
	now := s.now()
	if now.Before(s.lastDate) {
		now = s.lastDate
	}
	s.lastDate = now
	for _, e := range tx.entries {
		s.seqEntry++
		e.ID = s.seqEntry
		e.TransactionDate = now
		s.entries = append(s.entries, *e)
	}
	s.dropReservations(tx)
	s.mu.Unlock()

	s.release(tx)
}

func (s *Store) rollback(tx *txState) {
	s.mu.Lock()
	s.dropReservations(tx)
	s.mu.Unlock()
	s.release(tx)
}

func (s *Store) dropReservations(tx *txState) {
	for _, n := range tx.numbers {
		delete(s.reservedNumbers, n)
	}
	for _, o := range tx.owners {
		delete(s.reservedOwners, o)
	}
	for _, u := range tx.usernames {
		delete(s.reservedUsernames, u)
	}
}

func (r repo) autocommit(ctx context.Context, fn func(t repo) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.s.WithinTx(ctx, func(st repository.Store) error {
		return fn(repo(st.(txStore)))
	})
}

// view returns the account as this transaction sees it.
func (r repo) view(id int64) (model.Account, bool) {
	if r.tx != nil {
		if a, ok := r.tx.accounts[id]; ok {
			return *a, true
		}
	}
	r.s.mu.RLock()
	acc, ok := r.s.accounts[id]
	r.s.mu.RUnlock()
	if !ok {
		return model.Account{}, false
	}
	if r.tx != nil {
		if bal, staged := r.tx.balances[id]; staged {
			acc.Balance = bal
		}
	}
	return acc, true
}

func (r repo) CreateAccount(ctx context.Context, account *model.Account) error {
	return r.autocommit(ctx, func(t repo) error {
		s := t.s
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.byNumber[account.AccountNumber]; ok {
			return fmt.Errorf("create account: %w", repository.ErrDuplicate)
		}
		if _, ok := s.reservedNumbers[account.AccountNumber]; ok {
			return fmt.Errorf("create account: %w", repository.ErrDuplicate)
		}
		if _, ok := s.byOwner[account.OwnerID]; ok {
			return fmt.Errorf("create account: owner: %w", repository.ErrDuplicate)
		}
		if _, ok := s.reservedOwners[account.OwnerID]; ok {
			return fmt.Errorf("create account: owner: %w", repository.ErrDuplicate)
		}
		if account.Balance.IsNegative() {
			return fmt.Errorf("create account: balance must not be negative")
		}

		s.seqAccount++
		account.ID = s.seqAccount
		account.CreatedAt = s.now()
		cp := *account
		t.tx.accounts[cp.ID] = &cp
		s.reservedNumbers[cp.AccountNumber] = struct{}{}
		s.reservedOwners[cp.OwnerID] = struct{}{}
		t.tx.numbers = append(t.tx.numbers, cp.AccountNumber)
		t.tx.owners = append(t.tx.owners, cp.OwnerID)
		return nil
	})
}

func (r repo) GetAccountByID(_ context.Context, accountID int64) (*model.Account, error) {
	acc, ok := r.view(accountID)
	if !ok {
		return nil, fmt.Errorf("get account by id: %w", repository.ErrNotFound)
	}
	return &acc, nil
}

func (r repo) GetAccountByOwnerID(ctx context.Context, ownerID int64) (*model.Account, error) {
	if r.tx != nil {
		for _, a := range r.tx.accounts {
			if a.OwnerID == ownerID {
				cp := *a
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	id, ok := r.s.byOwner[ownerID]
	r.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get account by owner: %w", repository.ErrNotFound)
	}
	return r.GetAccountByID(ctx, id)
}

func (r repo) GetAccountByNumber(ctx context.Context, accountNumber string) (*model.Account, error) {
	if r.tx != nil {
		for _, a := range r.tx.accounts {
			if a.AccountNumber == accountNumber {
				cp := *a
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	id, ok := r.s.byNumber[accountNumber]
	r.s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get account by number: %w", repository.ErrNotFound)
	}
	return r.GetAccountByID(ctx, id)
}

func (r repo) AccountNumberExists(_ context.Context, accountNumber string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, committed := r.s.byNumber[accountNumber]
	_, reserved := r.s.reservedNumbers[accountNumber]
	return committed || reserved, nil
}

func (r repo) LockAccounts(ctx context.Context, accountIDs ...int64) ([]*model.Account, error) {
	if r.tx == nil {
		return nil, fmt.Errorf("lock accounts: must run inside a transaction")
	}
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	out := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		if _, own := r.tx.accounts[id]; !own {
			if _, held := r.tx.held[id]; !held {
				if err := r.s.acquire(ctx, id); err != nil {
					return nil, err
				}
				r.tx.held[id] = struct{}{}
			}
		}
		acc, ok := r.view(id)
		if !ok {
			return nil, fmt.Errorf("get account for update: %w", repository.ErrNotFound)
		}
		out = append(out, &acc)
	}
	return out, nil
}

func (r repo) UpdateAccountBalance(ctx context.Context, accountID int64, newBalance decimal.Decimal) error {
	if newBalance.IsNegative() {
		return fmt.Errorf("update account balance: balance must not be negative")
	}
	if r.tx == nil {
		return r.autocommit(ctx, func(t repo) error {
			if _, err := t.LockAccounts(ctx, accountID); err != nil {
				return err
			}
			return t.UpdateAccountBalance(ctx, accountID, newBalance)
		})
	}
	if a, own := r.tx.accounts[accountID]; own {
		a.Balance = newBalance
		return nil
	}
	if _, held := r.tx.held[accountID]; !held {
		return fmt.Errorf("update account balance: account %d is not locked by this transaction", accountID)
	}
	if _, ok := r.view(accountID); !ok {
		return fmt.Errorf("update account balance: %w", repository.ErrNotFound)
	}
	r.tx.balances[accountID] = newBalance
	return nil
}

func (r repo) AppendEntry(ctx context.Context, entry *model.LedgerEntry) error {
	return r.autocommit(ctx, func(t repo) error {
		if _, err := entry.Movement(); err != nil {
			return fmt.Errorf("append ledger entry: %w", err)
		}
		if !entry.Amount.IsPositive() {
			return fmt.Errorf("append ledger entry: amount must be positive")
		}
		for _, ref := range []*int64{entry.OriginAccountID, entry.TargetAccountID} {
			if ref == nil {
				continue
			}
			if _, ok := t.view(*ref); !ok {
				return fmt.Errorf("append ledger entry: account %d: %w", *ref, repository.ErrNotFound)
			}
		}
		t.tx.entries = append(t.tx.entries, entry)
		return nil
	})
}

func (r repo) ListEntriesByAccount(_ context.Context, accountID int64, page model.Page) ([]*model.LedgerEntry, error) {
	page = page.Normalize()

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*model.LedgerEntry, 0, page.Limit)
	for i := len(r.s.entries) - 1; i >= 0 && len(out) < page.Limit; i-- {
		e := r.s.entries[i]
		if page.BeforeID != 0 && e.ID >= page.BeforeID {
			continue
		}
		if !touches(e, accountID) {
			continue
		}
		cp := e
		if e.OriginAccountID != nil {
			cp.OriginAccountNumber, cp.OriginUserName = r.s.describe(*e.OriginAccountID)
		}
		if e.TargetAccountID != nil {
			cp.TargetAccountNumber, cp.TargetUserName = r.s.describe(*e.TargetAccountID)
		}
		out = append(out, &cp)
	}
	return out, nil
}

func touches(e model.LedgerEntry, accountID int64) bool {
	return (e.OriginAccountID != nil && *e.OriginAccountID == accountID) ||
		(e.TargetAccountID != nil && *e.TargetAccountID == accountID)
}

// describe must be called with s.mu held.
func (s *Store) describe(accountID int64) (number, username string) {
	acc, ok := s.accounts[accountID]
	if !ok {
		return "", ""
	}
	return acc.AccountNumber, s.users[acc.OwnerID].Username
}

func (r repo) CreateUser(ctx context.Context, user *model.User) error {
	return r.autocommit(ctx, func(t repo) error {
		s := t.s
		s.mu.Lock()
		defer s.mu.Unlock()

		if _, ok := s.byUsername[user.Username]; ok {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
		if _, ok := s.reservedUsernames[user.Username]; ok {
			return fmt.Errorf("create user: %w", repository.ErrDuplicate)
		}
		s.seqUser++
		user.ID = s.seqUser
		user.CreatedAt = s.now()
		cp := *user
		t.tx.users = append(t.tx.users, &cp)
		s.reservedUsernames[cp.Username] = struct{}{}
		t.tx.usernames = append(t.tx.usernames, cp.Username)
		return nil
	})
}

// Balances returns every committed balance keyed by account id.
func (s *Store) Balances() map[int64]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]decimal.Decimal, len(s.accounts))
	for id, a := range s.accounts {
		out[id] = a.Balance
	}
	return out
}

// Entries returns a copy of the committed ledger in insertion order.
func (s *Store) Entries() []model.LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

var (
	_ repository.Store              = (*Store)(nil)
	_ repository.IAccountRepository = repo{}
	_ repository.ILedgerRepository  = repo{}
	_ repository.IUserRepository    = repo{}
)
