package service

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePassword(password string, hashedPassword string) bool
}

type AccountRepository interface {
	Create(ctx context.Context, args repoargs.CreateAccount) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	LockByUsername(ctx context.Context, username string) (*domain.Account, error)
	Credit(ctx context.Context, username string, amount decimal.Decimal) (bool, error)
	Debit(ctx context.Context, username string, amount decimal.Decimal) (bool, error)
}

type TransactionRepository interface {
	Append(ctx context.Context, args repoargs.TransactionCreate) (*domain.Transaction, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Transaction, error)
}
