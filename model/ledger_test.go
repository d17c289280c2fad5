package model

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry_StorageShape(t *testing.T) {
	amount := decimal.RequireFromString("50.00")

	dep := NewEntry(Deposit{Target: 7}, amount)
	assert.Nil(t, dep.OriginAccountID)
	require.NotNil(t, dep.TargetAccountID)
	assert.Equal(t, int64(7), *dep.TargetAccountID)

	wd := NewEntry(Withdrawal{Source: 7}, amount)
	require.NotNil(t, wd.OriginAccountID)
	assert.Equal(t, int64(7), *wd.OriginAccountID)
	assert.Nil(t, wd.TargetAccountID)

	tr := NewEntry(Transfer{Source: 1, Target: 2}, amount)
	require.NotNil(t, tr.OriginAccountID)
	require.NotNil(t, tr.TargetAccountID)
	assert.Equal(t, int64(1), *tr.OriginAccountID)
	assert.Equal(t, int64(2), *tr.TargetAccountID)
}

func TestLedgerEntry_Movement(t *testing.T) {
	amount := decimal.NewFromInt(1)
	for _, m := range []Movement{Deposit{Target: 3}, Withdrawal{Source: 3}, Transfer{Source: 3, Target: 4}} {
		got, err := NewEntry(m, amount).Movement()
		require.NoError(t, err)
		assert.Equal(t, m, got)
		assert.Equal(t, m.Kind(), got.Kind())
	}

	_, err := (&LedgerEntry{Amount: amount}).Movement()
	assert.ErrorIs(t, err, ErrCorruptEntry)

	same := int64(5)
	_, err = (&LedgerEntry{OriginAccountID: &same, TargetAccountID: &same}).Movement()
	assert.ErrorIs(t, err, ErrCorruptEntry)
}

func TestPage_Normalize(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageLimit}, Page{}.Normalize())
	assert.Equal(t, Page{Limit: MaxPageLimit, BeforeID: 9}, Page{Limit: 1000, BeforeID: 9}.Normalize())
	assert.Equal(t, Page{Limit: 5}, Page{Limit: 5, BeforeID: -1}.Normalize())
}

func TestLedgerEntry_AmountDocumentedAsString(t *testing.T) {
	field, ok := reflect.TypeOf(LedgerEntry{}).FieldByName("Amount")
	require.True(t, ok)
	assert.Equal(t, "string", field.Tag.Get("swaggertype"))
}
