package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	KindDeposit    MovementKind = "deposit"
	KindWithdrawal MovementKind = "withdrawal"
	KindTransfer   MovementKind = "transfer"
)

// Movement is one money movement as the engine reasons about it. The set of
// implementations is closed: Deposit, Withdrawal and Transfer.
type Movement interface {
	Kind() MovementKind
	movement()
}

// Deposit moves money from outside the system into Target.
type Deposit struct {
	Target int64
}

// Withdrawal moves money out of Source to outside the system.
type Withdrawal struct {
	Source int64
}

// Transfer moves money from Source to Target.
type Transfer struct {
	Source int64
	Target int64
}

func (Deposit) Kind() MovementKind    { return KindDeposit }
func (Withdrawal) Kind() MovementKind { return KindWithdrawal }
func (Transfer) Kind() MovementKind   { return KindTransfer }

func (Deposit) movement()    {}
func (Withdrawal) movement() {}
func (Transfer) movement()   {}

var ErrCorruptEntry = errors.New("ledger entry has no valid origin/target combination")

// LedgerEntry is the stored form of a movement. A nil origin is an external
// source, a nil target an external sink; both nil never happens.
type LedgerEntry struct {
	ID              int64           `json:"id"`
	OriginAccountID *int64          `json:"origin_account"`
	TargetAccountID *int64          `json:"target_account"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string"`
	TransactionDate time.Time       `json:"transaction_date"`

	// Filled by history queries only.
	OriginAccountNumber string `json:"origin_account_number,omitempty"`
	TargetAccountNumber string `json:"target_account_number,omitempty"`
	OriginUserName      string `json:"origin_user_name,omitempty"`
	TargetUserName      string `json:"target_user_name,omitempty"`
}

// NewEntry lowers a movement to its storage shape.
func NewEntry(m Movement, amount decimal.Decimal) *LedgerEntry {
	e := &LedgerEntry{Amount: amount}
	switch mv := m.(type) {
	case Deposit:
		e.TargetAccountID = ptr(mv.Target)
	case Withdrawal:
		e.OriginAccountID = ptr(mv.Source)
	case Transfer:
		e.OriginAccountID = ptr(mv.Source)
		e.TargetAccountID = ptr(mv.Target)
	}
	return e
}

// Movement lifts the nullable pair back into its tagged form.
func (e *LedgerEntry) Movement() (Movement, error) {
	switch {
	case e.OriginAccountID == nil && e.TargetAccountID != nil:
		return Deposit{Target: *e.TargetAccountID}, nil
	case e.OriginAccountID != nil && e.TargetAccountID == nil:
		return Withdrawal{Source: *e.OriginAccountID}, nil
	case e.OriginAccountID != nil && e.TargetAccountID != nil && *e.OriginAccountID != *e.TargetAccountID:
		return Transfer{Source: *e.OriginAccountID, Target: *e.TargetAccountID}, nil
	default:
		return nil, ErrCorruptEntry
	}
}

// Page selects a window of ledger history, newest first. BeforeID of zero
// starts from the most recent entry.
type Page struct {
	Limit    int
	BeforeID int64
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Normalize clamps the limit into [1, MaxPageLimit].
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.BeforeID < 0 {
		p.BeforeID = 0
	}
	return p
}

func ptr(v int64) *int64 { return &v }
