package uow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type RepositoryName string
type Repository any
type RepositoryFactory func(DBTX) Repository

// rollbackTimeout ограничивает откат транзакции, который выполняется на контексте, отвязанном от отмены
// вызывающей стороны.
const rollbackTimeout = 5 * time.Second

// TxBeginner пул соединений, из которого берутся транзакции. *pgxpool.Pool ему удовлетворяет.
type TxBeginner interface {
	DBTX
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type UnitOfWork struct {
	conn         TxBeginner
	repositories map[RepositoryName]RepositoryFactory
	txOptions    pgx.TxOptions
	lockTimeout  time.Duration
}

type Option func(*UnitOfWork)

// WithTxOptions задает параметры (уровень изоляции, режим доступа) для каждой транзакции Do.
func WithTxOptions(opts pgx.TxOptions) Option {
	return func(u *UnitOfWork) {
		u.txOptions = opts
	}
}

// WithLockTimeout ограничивает ожидание блокировок строк внутри транзакции. Значение применяется
// через set_config(..., true) и действует только до конца транзакции.
func WithLockTimeout(d time.Duration) Option {
	return func(u *UnitOfWork) {
		u.lockTimeout = d
	}
}

func NewUnitOfWork(conn TxBeginner, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register регистрирует репозиторий у себя в мапе. Если репозиторий уже зарегистрирован, возвращает
// ошибку ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет функцию fn внутри транзакции. Транзакция фиксируется только если fn вернула nil,
// во всех остальных случаях (включая панику) - откатывается. Если откат не удался, к ошибке
// добавляется ErrRollbackFailed.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, TX) error) (err error) {
	tx, txErr := u.conn.BeginTx(ctx, u.txOptions)
	if txErr != nil {
		return txErr //nolint:wrapcheck
	}
	// После Commit соединение уже возвращено в пул, трогать tx нельзя.
	committed := false
	defer func() {
		if p := recover(); p != nil {
			_ = rollback(ctx, tx)
			panic(p)
		}
		if committed {
			return
		}
		if rollbackErr := rollback(ctx, tx); rollbackErr != nil {
			err = errors.Join(err, fmt.Errorf("%w: %s", ErrRollbackFailed, rollbackErr.Error()))
		}
	}()

	if u.lockTimeout > 0 {
		if _, setErr := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)",
			lockTimeoutSetting(u.lockTimeout)); setErr != nil {
			return fmt.Errorf("set lock timeout: %w", setErr)
		}
	}

	transErr := fn(ctx, NewTransaction(tx, u.repositories))
	if transErr != nil {
		return transErr
	}
	committed = true
	return tx.Commit(ctx) //nolint:wrapcheck
}

// GetRepository возвращает репозиторий или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if repoFactory, ok := u.repositories[name]; ok {
		return repoFactory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий по имени name и приводит его к типу T. Возвращает ошибки
// ErrRepositoryNotRegistered и ErrInvalidRepositoryType.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)

	if !ok {
		return res, ErrInvalidRepositoryType
	}

	return r, nil
}

// rollback откатывает транзакцию на контексте без отмены: отмененный запрос не должен оставлять
// транзакцию открытой. Закрытое соединение сервер откатывает сам, это не считается ошибкой.
func rollback(ctx context.Context, tx pgx.Tx) error {
	if conn := tx.Conn(); conn != nil && conn.IsClosed() {
		return nil
	}
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := tx.Rollback(rbCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err //nolint:wrapcheck
	}
	return nil
}

// lockTimeoutSetting форматирует длительность для lock_timeout в миллисекундах. Значения меньше
// миллисекунды округляются вверх, т.к. 0 в postgres означает отсутствие таймаута.
func lockTimeoutSetting(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return fmt.Sprintf("%dms", ms)
}
