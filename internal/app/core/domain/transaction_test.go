package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in   string
		want TransactionType
	}{
		{"deposit", TransactionTypeDeposit},
		{"withdrawal", TransactionTypeWithdrawal},
		{"dispute", TransactionTypeDispute},
		{"resolve", TransactionTypeResolve},
		{"chargeback", TransactionTypeChargeback},
		// 大小寫不敏感
		{"Deposit", TransactionTypeDeposit},
		{"CHARGEBACK", TransactionTypeChargeback},
	}
	for _, tt := range tests {
		got, err := ParseTransactionType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTransactionType("transfer")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestNewDeposit(t *testing.T) {
	dep, err := NewDeposit(Record{Type: TransactionTypeDeposit, Client: 1, Tx: 1, Amount: amount("1.5")})
	require.NoError(t, err)
	assert.Equal(t, ClientID(1), dep.Client)
	assert.True(t, dep.Amount.Equal(decimal.RequireFromString("1.5")))

	// 宣告類型不符
	_, err = NewDeposit(Record{Type: TransactionTypeDispute, Client: 1, Tx: 1})
	assert.ErrorIs(t, err, ErrInvalidType)

	// 缺少金額
	_, err = NewDeposit(Record{Type: TransactionTypeDeposit, Client: 1, Tx: 1})
	assert.ErrorIs(t, err, ErrMissingAmount)
}

func TestNewWithdrawal(t *testing.T) {
	_, err := NewWithdrawal(Record{Type: TransactionTypeWithdrawal, Client: 1, Tx: 2, Amount: amount("3")})
	require.NoError(t, err)

	_, err = NewWithdrawal(Record{Type: TransactionTypeWithdrawal, Client: 1, Tx: 2})
	assert.ErrorIs(t, err, ErrMissingAmount)
}

func TestReferenceActionsRejectAmount(t *testing.T) {
	// dispute/resolve/chargeback 只作用於既有 tx，不允許攜帶金額
	_, err := NewDispute(Record{Type: TransactionTypeDispute, Client: 1, Tx: 1, Amount: amount("1")})
	assert.ErrorIs(t, err, ErrHasAmount)

	_, err = NewResolve(Record{Type: TransactionTypeResolve, Client: 1, Tx: 1, Amount: amount("1")})
	assert.ErrorIs(t, err, ErrHasAmount)

	_, err = NewChargeback(Record{Type: TransactionTypeChargeback, Client: 1, Tx: 1, Amount: amount("1")})
	assert.ErrorIs(t, err, ErrHasAmount)
}

func TestLifecycleTransitions(t *testing.T) {
	dep := DepositRecord{Client: 1, Tx: 7, Amount: decimal.RequireFromString("2.5")}

	disputed, err := dep.Dispute(&Dispute{Client: 1, Tx: 7})
	require.NoError(t, err)
	assert.Equal(t, dep, disputed.Deposit)

	resolved, err := disputed.Resolve(&Resolve{Client: 1, Tx: 7})
	require.NoError(t, err)
	assert.Equal(t, disputed, resolved.Disputed)

	back, err := resolved.Chargeback(&Chargeback{Client: 1, Tx: 7})
	require.NoError(t, err)
	assert.Equal(t, resolved, back.Resolved)
}

func TestLifecycleTransitionsRecheckIdentity(t *testing.T) {
	dep := DepositRecord{Client: 1, Tx: 7, Amount: decimal.RequireFromString("2.5")}

	// tx 不符
	_, err := dep.Dispute(&Dispute{Client: 1, Tx: 8})
	assert.ErrorIs(t, err, ErrInvalidTxID)

	// client 不符
	_, err = dep.Dispute(&Dispute{Client: 2, Tx: 7})
	assert.ErrorIs(t, err, ErrInvalidClientID)

	disputed := DisputedRecord{Deposit: dep}
	_, err = disputed.Resolve(&Resolve{Client: 2, Tx: 7})
	assert.ErrorIs(t, err, ErrInvalidClientID)

	resolved := ResolvedRecord{Disputed: disputed}
	_, err = resolved.Chargeback(&Chargeback{Client: 1, Tx: 9})
	assert.ErrorIs(t, err, ErrInvalidTxID)
}
