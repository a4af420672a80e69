package pgrepo

import (
	"context"

	"github.com/fsdevblog/groph-bank/internal/domain"
	"github.com/fsdevblog/groph-bank/internal/repository/repoargs"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = "id, source_username, destination_username, amount, created_at"

const (
	transactionAppendSQL = `INSERT INTO transactions (source_username, destination_username, amount)
VALUES ($1, $2, $3) RETURNING ` + transactionColumns

	transactionListByUsernameSQL = `SELECT ` + transactionColumns + ` FROM transactions
WHERE source_username = $1 OR destination_username = $1 ORDER BY id`
)

// TransactionRepository журнал транзакций. Только вставка и чтение, записи никогда не изменяются.
type TransactionRepository struct {
	conn DBTX
}

func NewTransactionRepository(conn DBTX) *TransactionRepository {
	return &TransactionRepository{conn: conn}
}

// Append добавляет запись в журнал. id и created_at назначает база.
func (t *TransactionRepository) Append(
	ctx context.Context,
	args repoargs.TransactionCreate,
) (*domain.Transaction, error) {
	row := t.conn.QueryRow(ctx, transactionAppendSQL, args.Source, args.Destination, args.Amount)
	transaction, err := scanTransaction(row)
	if err != nil {
		return nil, convertErr(err, "appending transaction")
	}
	return transaction, nil
}

// ListByUsername возвращает все записи, где username отправитель или получатель, по возрастанию id.
func (t *TransactionRepository) ListByUsername(ctx context.Context, username string) ([]domain.Transaction, error) {
	rows, queryErr := t.conn.Query(ctx, transactionListByUsernameSQL, username)
	if queryErr != nil {
		return nil, convertErr(queryErr, "listing transactions of `%s`", username)
	}

	transactions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		tr, scanErr := scanTransaction(row)
		if scanErr != nil {
			return domain.Transaction{}, scanErr
		}
		return *tr, nil
	})
	if err != nil {
		return nil, convertErr(err, "listing transactions of `%s`", username)
	}
	return transactions, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tr domain.Transaction
	if err := row.Scan(
		&tr.ID,
		&tr.Source,
		&tr.Destination,
		&tr.Amount,
		&tr.CreatedAt,
	); err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &tr, nil
}
