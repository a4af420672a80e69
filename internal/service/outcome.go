package service

import (
	"errors"

	"github.com/fsdevblog/groph-bank/internal/domain"
)

var successMessages = map[domain.OperationType]string{
	domain.OperationDeposit:  "Deposit successful.",
	domain.OperationWithdraw: "Withdrawal successful.",
	domain.OperationTransfer: "Transfer successful.",
	domain.OperationBalance:  "Balance retrieved.",
	domain.OperationHistory:  "History retrieved.",
}

var invalidAmountMessages = map[domain.OperationType]string{
	domain.OperationDeposit:  "Deposit amount must be positive.",
	domain.OperationWithdraw: "Withdrawal amount must be positive.",
	domain.OperationTransfer: "Transfer amount must be positive.",
}

// NewOutcome переводит результат операции op в сообщение для клиента. Текст внутренних ошибок наружу
// не попадает.
func NewOutcome(op domain.OperationType, err error) domain.Outcome {
	if err == nil {
		return domain.Outcome{Success: true, Message: successMessages[op]}
	}
	return domain.Outcome{Success: false, Message: failureMessage(op, err)}
}

func failureMessage(op domain.OperationType, err error) string {
	var notFound *domain.AccountNotFoundError

	switch {
	case errors.Is(err, domain.ErrStoreFailure):
		return "Database error."
	case errors.Is(err, domain.ErrInvalidAmount):
		if msg, ok := invalidAmountMessages[op]; ok {
			return msg
		}
		return "Amount must be positive."
	case errors.Is(err, domain.ErrSameAccount):
		return "Cannot transfer to the same user."
	case errors.As(err, &notFound):
		switch notFound.Role {
		case domain.RoleSender:
			return "Sender not found."
		case domain.RoleRecipient:
			return "Recipient not found."
		default:
			return "User not found."
		}
	case errors.Is(err, domain.ErrAccountNotFound):
		return "User not found."
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "Insufficient funds."
	case errors.Is(err, domain.ErrLockTimeout):
		return "Account is busy, try again later."
	default:
		return "Database error."
	}
}
