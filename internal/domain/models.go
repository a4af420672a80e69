package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Username     string
	PasswordHash string
	Balance      decimal.Decimal
}

// Transaction неизменяемая запись о движении денег. Для пополнения Source пустой, для списания -
// Destination, для перевода заполнены оба.
type Transaction struct {
	ID          int64
	CreatedAt   time.Time
	Source      *string
	Destination *string
	Amount      decimal.Decimal
}

// KindFor классифицирует запись относительно аккаунта username.
func (t Transaction) KindFor(username string) TransactionKind {
	switch {
	case t.Source == nil:
		return KindDeposit
	case t.Destination == nil:
		return KindWithdraw
	case *t.Destination == username:
		return KindTransferIn
	default:
		return KindTransferOut
	}
}

type HistoryEntry struct {
	Transaction
	Kind TransactionKind
}
