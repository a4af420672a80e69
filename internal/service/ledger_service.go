package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/fsdevblog/groph-bank/pkg/uow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// LedgerService проводит операции с деньгами. Каждая операция выполняется в одной транзакции uow:
// изменение баланса и запись в журнал фиксируются вместе или не фиксируются вовсе.
type LedgerService struct {
	uow             uow.UOW
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	l               *logrus.Entry
}

func NewLedgerService(u uow.UOW, l *logrus.Logger) (*LedgerService, error) {
	accountRepo, accountRepoErr :=
		uow.GetRepositoryAs[AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr
	}
	transactionRepo, transactionRepoErr :=
		uow.GetRepositoryAs[TransactionRepository](u, uow.RepositoryName(repoargs.TransactionRepoName))
	if transactionRepoErr != nil {
		return nil, transactionRepoErr
	}
	return &LedgerService{
		uow:             u,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		l: l.WithFields(logrus.Fields{
			"component": "service",
			"module":    "ledger",
		}),
	}, nil
}

// Deposit зачисляет amount на аккаунт username.
//
// Возвращает созданную запись журнала или ошибки domain.ErrInvalidAmount, domain.ErrAccountNotFound,
// domain.ErrLockTimeout, domain.ErrStoreFailure.
func (s *LedgerService) Deposit(
	ctx context.Context,
	username string,
	amount decimal.Decimal,
) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.OperationDeposit, err)
	}

	var record *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, transactionRepo, repoErr := txRepositories(tx)
		if repoErr != nil {
			return repoErr
		}

		// UPDATE сам берет блокировку строки, поэтому отдельный FOR UPDATE здесь не нужен.
		credited, creditErr := accountRepo.Credit(c, username, amount)
		if creditErr != nil {
			return creditErr //nolint:wrapcheck
		}
		if !credited {
			return domain.NewAccountNotFoundError(username, domain.RoleAccount)
		}

		var appendErr error
		record, appendErr = transactionRepo.Append(c, repoargs.TransactionCreate{
			Destination: &username,
			Amount:      amount,
		})
		return appendErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, s.classifyErr(domain.OperationDeposit, txErr)
	}
	return record, nil
}

// Withdraw списывает amount с аккаунта username.
//
// Алгоритм работы:
//  1. Блокирует строку аккаунта (SELECT ... FOR UPDATE).
//  2. Сравнивает сумму с балансом, прочитанным под блокировкой.
//  3. Уменьшает баланс и добавляет запись в журнал, не отпуская блокировку.
func (s *LedgerService) Withdraw(
	ctx context.Context,
	username string,
	amount decimal.Decimal,
) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.OperationWithdraw, err)
	}

	var record *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, transactionRepo, repoErr := txRepositories(tx)
		if repoErr != nil {
			return repoErr
		}

		account, lockErr := accountRepo.LockByUsername(c, username)
		if lockErr != nil {
			return convertLockErr(lockErr, username, domain.RoleAccount)
		}
		if amount.GreaterThan(account.Balance) {
			return domain.ErrInsufficientFunds
		}

		debited, debitErr := accountRepo.Debit(c, username, amount)
		if debitErr != nil {
			return debitErr //nolint:wrapcheck
		}
		if !debited {
			return domain.ErrInsufficientFunds
		}

		var appendErr error
		record, appendErr = transactionRepo.Append(c, repoargs.TransactionCreate{
			Source: &username,
			Amount: amount,
		})
		return appendErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, s.classifyErr(domain.OperationWithdraw, txErr)
	}
	return record, nil
}

// Transfer переводит amount с аккаунта from на аккаунт to.
//
// Алгоритм работы:
//  1. Блокирует обе строки в порядке lockOrder, не зависящем от направления перевода. Два встречных
//     перевода между одной парой аккаунтов ждут одну и ту же первую блокировку, поэтому взаимная
//     блокировка невозможна.
//  2. Условно списывает с from (только если balance >= amount).
//  3. Зачисляет на to и добавляет одну запись журнала с обоими участниками.
func (s *LedgerService) Transfer(
	ctx context.Context,
	from, to string,
	amount decimal.Decimal,
) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("%s: %w", domain.OperationTransfer, err)
	}
	if from == to {
		return nil, fmt.Errorf("%s: %w", domain.OperationTransfer, domain.ErrSameAccount)
	}

	var record *domain.Transaction
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, transactionRepo, repoErr := txRepositories(tx)
		if repoErr != nil {
			return repoErr
		}

		first, second := lockOrder(from, to)
		for _, username := range [2]string{first, second} {
			if _, lockErr := accountRepo.LockByUsername(c, username); lockErr != nil {
				return convertLockErr(lockErr, username, transferRole(username, from))
			}
		}

		debited, debitErr := accountRepo.Debit(c, from, amount)
		if debitErr != nil {
			return debitErr //nolint:wrapcheck
		}
		if !debited {
			return domain.ErrInsufficientFunds
		}

		credited, creditErr := accountRepo.Credit(c, to, amount)
		if creditErr != nil {
			return creditErr //nolint:wrapcheck
		}
		if !credited {
			return domain.NewAccountNotFoundError(to, domain.RoleRecipient)
		}

		var appendErr error
		record, appendErr = transactionRepo.Append(c, repoargs.TransactionCreate{
			Source:      &from,
			Destination: &to,
			Amount:      amount,
		})
		return appendErr //nolint:wrapcheck
	})
	if txErr != nil {
		return nil, s.classifyErr(domain.OperationTransfer, txErr)
	}
	return record, nil
}

// GetBalance возвращает текущий баланс аккаунта. Читает без блокировки и вне транзакции.
func (s *LedgerService) GetBalance(ctx context.Context, username string) (decimal.Decimal, error) {
	account, err := s.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		return decimal.Zero, s.classifyErr(domain.OperationBalance, convertLockErr(err, username, domain.RoleAccount))
	}
	return account.Balance, nil
}

// GetHistory возвращает все записи журнала, где username отправитель или получатель, по возрастанию id.
// Каждая запись классифицируется относительно username.
func (s *LedgerService) GetHistory(ctx context.Context, username string) ([]domain.HistoryEntry, error) {
	if _, err := s.accountRepo.FindByUsername(ctx, username); err != nil {
		return nil, s.classifyErr(domain.OperationHistory, convertLockErr(err, username, domain.RoleAccount))
	}

	transactions, err := s.transactionRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, s.classifyErr(domain.OperationHistory, err)
	}

	history := make([]domain.HistoryEntry, len(transactions))
	for i, transaction := range transactions {
		history[i] = domain.HistoryEntry{
			Transaction: transaction,
			Kind:        transaction.KindFor(username),
		}
	}
	return history, nil
}

// classifyErr оставляет бизнес-ошибки как есть, а все прочие сбои хранилища приводит к
// domain.ErrStoreFailure. Неудачный откат дополнительно помечается domain.ErrRollbackFailed и логируется.
func (s *LedgerService) classifyErr(op domain.OperationType, err error) error {
	switch {
	case errors.Is(err, uow.ErrRollbackFailed):
		s.l.WithError(err).WithField("operation", op).Error("rollback failed")
		return fmt.Errorf("%s: %w: %w: %s", op, domain.ErrStoreFailure, domain.ErrRollbackFailed, err.Error())
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrLockTimeout):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %s", op, domain.ErrLockTimeout, err.Error())
	default:
		return fmt.Errorf("%s: %w: %s", op, domain.ErrStoreFailure, err.Error())
	}
}

func txRepositories(tx uow.TX) (AccountRepository, TransactionRepository, error) {
	accountRepo, accountRepoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, nil, accountRepoErr //nolint:wrapcheck
	}
	transactionRepo, transactionRepoErr :=
		uow.GetAs[TransactionRepository](tx, uow.RepositoryName(repoargs.TransactionRepoName))
	if transactionRepoErr != nil {
		return nil, nil, transactionRepoErr //nolint:wrapcheck
	}
	return accountRepo, transactionRepo, nil
}

// lockOrder возвращает пару юзернеймов в каноническом порядке блокировки: побайтово меньший первым.
func lockOrder(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

func transferRole(username, from string) domain.AccountRole {
	if username == from {
		return domain.RoleSender
	}
	return domain.RoleRecipient
}

// convertLockErr превращает domain.ErrRecordNotFound в ошибку ненайденного аккаунта с указанной ролью.
func convertLockErr(err error, username string, role domain.AccountRole) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.NewAccountNotFoundError(username, role)
	}
	return err
}
