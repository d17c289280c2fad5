package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"whole", "50", "50", nil},
		{"cents", "20.05", "20.05", nil},
		{"trailing zeros", "30.000", "30", nil},
		{"zero", "0", "", ErrAmountNotPositive},
		{"negative", "-5", "", ErrAmountNotPositive},
		{"too precise", "1.001", "", ErrAmountPrecision},
		{"not a number", "abc", "", ErrAmountMalformed},
		{"empty", "", "", ErrAmountMalformed},
		{"too large", "1000000000000000000", "", ErrAmountTooLarge},
		{"largest", "999999999999999999.99", "999999999999999999.99", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestFitsBalance(t *testing.T) {
	assert.True(t, FitsBalance(decimal.Zero))
	assert.True(t, FitsBalance(decimal.RequireFromString("999999999999999999.99")))
	assert.False(t, FitsBalance(MaxAmount))
	assert.False(t, FitsBalance(decimal.RequireFromString("-0.01")))
}

func TestIsAccountNumber(t *testing.T) {
	assert.True(t, IsAccountNumber("01234567890123456789"))
	assert.False(t, IsAccountNumber("0123456789012345678"))
	assert.False(t, IsAccountNumber("0123456789012345678a"))
	assert.False(t, IsAccountNumber(""))
}

func TestValidateAmount_ExtremeExponents(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"huge exponent", `{"amount":"1e50000000"}`, ErrAmountTooLarge},
		{"tiny exponent", `{"amount":"1e-50000000"}`, ErrAmountPrecision},
		{"huge numeric exponent", `{"amount":1e2000000000}`, ErrAmountTooLarge},
		{"many digits", `{"amount":"123456789012345678901234567890"}`, ErrAmountTooLarge},
		{"many trailing zeros", `{"amount":"1.000000000000000000000000"}`, ErrAmountPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req AmountRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			start := time.Now()
			err := ValidateAmount(req.Amount)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Less(t, time.Since(start), 100*time.Millisecond)
		})
	}
}

func TestValidateAmount_BoundaryDigits(t *testing.T) {
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("1e17")))
	assert.ErrorIs(t, ValidateAmount(decimal.RequireFromString("1e18")), ErrAmountTooLarge)
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("0.01")))
	assert.NoError(t, ValidateAmount(decimal.RequireFromString("5.000000000000000000")))
}
