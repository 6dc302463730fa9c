package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxFunc выполняется внутри транзакции; ошибка или паника откатывают её.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TxManager: транзакции для миграций и пакетных записей, Conn для одиночных запросов.
type TxManager interface {
	RunMaster(ctx context.Context, fn TxFunc) error
	Conn() Transaction
}

// Transaction: общий набор методов пула и pgx.Tx.
type Transaction interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
