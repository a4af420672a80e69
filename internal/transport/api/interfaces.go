package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/service"
)

// UserServicer интерфейс исключительно для моков.
type UserServicer interface {
	Register(ctx context.Context, args service.RegisterUserArgs) (*domain.Account, string, error)
	Login(ctx context.Context, args service.LoginUserArgs) (*domain.Account, string, error)
}

type LedgerServicer interface {
	Deposit(ctx context.Context, username string, amount decimal.Decimal) (*domain.Transaction, error)
	Withdraw(ctx context.Context, username string, amount decimal.Decimal) (*domain.Transaction, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (*domain.Transaction, error)
	GetBalance(ctx context.Context, username string) (decimal.Decimal, error)
	GetHistory(ctx context.Context, username string) ([]domain.HistoryEntry, error)
}
