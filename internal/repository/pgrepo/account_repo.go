package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const accountColumns = "username, password_hash, balance, created_at, updated_at"

const (
	accountCreateSQL = `INSERT INTO accounts (username, password_hash) VALUES ($1, $2)
RETURNING ` + accountColumns

	accountFindSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	accountLockSQL = accountFindSQL + ` FOR UPDATE`

	accountCreditSQL = `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE username = $2`

	accountDebitSQL = `UPDATE accounts SET balance = balance - $1, updated_at = NOW()
WHERE username = $2 AND balance >= $1`
)

// AccountRepository хранит балансы аккаунтов. Все изменения баланса выполняются одним UPDATE,
// который берет блокировку строки до конца транзакции.
type AccountRepository struct {
	conn DBTX
}

func NewAccountRepository(conn DBTX) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Create создает аккаунт с нулевым балансом. В случае конфликта юзернейма возвращает ошибку
// domain.ErrDuplicateKey, во всех других случаях - domain.ErrUnknown.
func (a *AccountRepository) Create(ctx context.Context, args repoargs.CreateAccount) (*domain.Account, error) {
	row := a.conn.QueryRow(ctx, accountCreateSQL, args.Username, args.PasswordHash)
	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "creating account `%s`", args.Username)
	}
	return account, nil
}

// FindByUsername читает аккаунт без блокировки. Возвращает domain.ErrRecordNotFound если записи нет.
func (a *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := scanAccount(a.conn.QueryRow(ctx, accountFindSQL, username))
	if err != nil {
		return nil, convertErr(err, "finding account `%s`", username)
	}
	return account, nil
}

// LockByUsername читает аккаунт с эксклюзивной блокировкой строки (SELECT ... FOR UPDATE). Имеет смысл
// только внутри транзакции. При истечении lock_timeout возвращает domain.ErrLockTimeout.
func (a *AccountRepository) LockByUsername(ctx context.Context, username string) (*domain.Account, error) {
	account, err := scanAccount(a.conn.QueryRow(ctx, accountLockSQL, username))
	if err != nil {
		return nil, convertErr(err, "locking account `%s`", username)
	}
	return account, nil
}

// Credit увеличивает баланс. Возвращает false, если аккаунт не найден.
func (a *AccountRepository) Credit(ctx context.Context, username string, amount decimal.Decimal) (bool, error) {
	tag, err := a.conn.Exec(ctx, accountCreditSQL, amount, username)
	if err != nil {
		return false, convertErr(err, "crediting account `%s`", username)
	}
	return tag.RowsAffected() == 1, nil
}

// Debit уменьшает баланс только при условии balance >= amount. Возвращает false, если аккаунт не найден
// или средств недостаточно.
func (a *AccountRepository) Debit(ctx context.Context, username string, amount decimal.Decimal) (bool, error) {
	tag, err := a.conn.Exec(ctx, accountDebitSQL, amount, username)
	if err != nil {
		return false, convertErr(err, "debiting account `%s`", username)
	}
	return tag.RowsAffected() == 1, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.Username,
		&account.PasswordHash,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &account, nil
}
