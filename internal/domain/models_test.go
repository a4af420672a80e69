package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTransaction_KindFor(t *testing.T) {
	cases := []struct {
		name   string
		tr     Transaction
		viewer string
		want   TransactionKind
	}{
		{name: "deposit", tr: Transaction{Destination: strPtr("alice")}, viewer: "alice", want: KindDeposit},
		{name: "withdraw", tr: Transaction{Source: strPtr("alice")}, viewer: "alice", want: KindWithdraw},
		{
			name:   "transfer in",
			tr:     Transaction{Source: strPtr("bob"), Destination: strPtr("alice")},
			viewer: "alice",
			want:   KindTransferIn,
		},
		{
			name:   "transfer out",
			tr:     Transaction{Source: strPtr("alice"), Destination: strPtr("bob")},
			viewer: "alice",
			want:   KindTransferOut,
		},
		{
			name:   "case sensitive usernames",
			tr:     Transaction{Source: strPtr("alice"), Destination: strPtr("Alice")},
			viewer: "alice",
			want:   KindTransferOut,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.tr.KindFor(tc.viewer))
		})
	}
}

func TestTransactionKind_MarshalText(t *testing.T) {
	text, err := KindTransferIn.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "TRANSFER_IN", string(text))

	_, err = TransactionKind(0).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "TransactionKind(0)", TransactionKind(0).String())
}

func TestValidateAmount(t *testing.T) {
	cases := []struct {
		amount  string
		wantErr bool
	}{
		{amount: "100.00"},
		{amount: "0.01"},
		{amount: "12.5"},
		{amount: "0", wantErr: true},
		{amount: "-5", wantErr: true},
		{amount: "0.001", wantErr: true},
		{amount: "1.999", wantErr: true},
		{amount: "1e10000000", wantErr: true},
		{amount: "1e-10000000", wantErr: true},
		{amount: "-1e10000000", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.amount, func(t *testing.T) {
			err := ValidateAmount(decimal.RequireFromString(tc.amount))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAccountNotFoundError(t *testing.T) {
	err := fmtWrap(NewAccountNotFoundError("bob", RoleRecipient))

	assert.ErrorIs(t, err, ErrAccountNotFound)

	var notFound *AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, RoleRecipient, notFound.Role)
	assert.Equal(t, "bob", notFound.Username)
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("transfer"), err)
}
