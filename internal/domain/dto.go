package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type TransactionKind uint8

const (
	KindDeposit TransactionKind = iota + 1
	KindWithdraw
	KindTransferIn
	KindTransferOut
)

func (k TransactionKind) String() string {
	switch k {
	case KindDeposit:
		return "DEPOSIT"
	case KindWithdraw:
		return "WITHDRAW"
	case KindTransferIn:
		return "TRANSFER_IN"
	case KindTransferOut:
		return "TRANSFER_OUT"
	default:
		return fmt.Sprintf("TransactionKind(%d)", uint8(k))
	}
}

func (k TransactionKind) MarshalText() ([]byte, error) {
	switch k {
	case KindDeposit, KindWithdraw, KindTransferIn, KindTransferOut:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown transaction kind %d", uint8(k))
	}
}

type OperationType string

const (
	OperationDeposit  OperationType = "deposit"
	OperationWithdraw OperationType = "withdraw"
	OperationTransfer OperationType = "transfer"
	OperationBalance  OperationType = "balance"
	OperationHistory  OperationType = "history"
)

// Outcome результат операции в том виде, в котором он отдается клиенту.
type Outcome struct {
	Success bool
	Message string
}

// AmountScale максимальное кол-во знаков после запятой в денежной сумме.
const AmountScale = 2

// Границы экспоненты суммы. Суммы вне границ отклоняются до форматирования и округления.
const (
	MinAmountExponent = -20
	MaxAmountExponent = 17
)

// AmountExponentInRange проверяет экспоненту суммы без арифметики над значением.
func AmountExponentInRange(amount decimal.Decimal) bool {
	exp := amount.Exponent()
	return exp >= MinAmountExponent && exp <= MaxAmountExponent
}

// ValidateAmount проверяет, что сумма положительная и представима в копейках без округления.
func ValidateAmount(amount decimal.Decimal) error {
	if !AmountExponentInRange(amount) {
		return ErrInvalidAmount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrInvalidAmount
	}
	return nil
}
