package repoargs

import "github.com/shopspring/decimal"

// TransactionCreate аргументы записи в журнал транзакций. Пустой Source - пополнение,
// пустой Destination - списание.
type TransactionCreate struct {
	Source      *string
	Destination *string
	Amount      decimal.Decimal
}
