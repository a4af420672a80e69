package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrPasswordMissMatch  = errors.New("password mismatch")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrUnknown            = errors.New("unknown error")
	ErrLockTimeout        = errors.New("lock wait timeout")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSameAccount       = errors.New("same account")
	ErrStoreFailure      = errors.New("store failure")
	ErrRollbackFailed    = errors.New("rollback failed")
)

type AccountRole string

const (
	RoleAccount   AccountRole = "account"
	RoleSender    AccountRole = "sender"
	RoleRecipient AccountRole = "recipient"
)

// AccountNotFoundError уточняет ErrAccountNotFound ролью аккаунта в операции.
type AccountNotFoundError struct {
	Username string
	Role     AccountRole
}

func NewAccountNotFoundError(username string, role AccountRole) error {
	return &AccountNotFoundError{Username: username, Role: role}
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("%s `%s`: %s", e.Role, e.Username, ErrAccountNotFound.Error())
}

func (e *AccountNotFoundError) Unwrap() error {
	return ErrAccountNotFound
}
