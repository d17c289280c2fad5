// Package events publishes ledger entries to downstream consumers once they
// are committed.
package events

import (
	"context"
	"time"

	"bank-ledger-api/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryRecorded is emitted after a ledger entry has been committed.
type EntryRecorded struct {
	EventID       uuid.UUID          `json:"event_id"`
	EntryID       int64              `json:"entry_id"`
	Kind          model.MovementKind `json:"kind"`
	OriginAccount string             `json:"origin_account,omitempty"`
	TargetAccount string             `json:"target_account,omitempty"`
	Amount        decimal.Decimal    `json:"amount"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

func NewEntryRecorded(entry *model.LedgerEntry, kind model.MovementKind, origin, target string) EntryRecorded {
	return EntryRecorded{
		EventID:       uuid.New(),
		EntryID:       entry.ID,
		Kind:          kind,
		OriginAccount: origin,
		TargetAccount: target,
		Amount:        entry.Amount,
		OccurredAt:    entry.TransactionDate,
	}
}

type Publisher interface {
	Publish(ctx context.Context, event EntryRecorded) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, EntryRecorded) error { return nil }
