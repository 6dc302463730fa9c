package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"futures_bot/pkg/logger"
)

type PoolConfig struct {
	DSN         string
	MaxConns    int32         // 0: по умолчанию pgxpool
	ConnTimeout time.Duration // 0: 5s
}

type PgTxManager struct {
	pool *pgxpool.Pool
}

var _ TxManager = (*PgTxManager)(nil)

func NewPgTxManager(pool *pgxpool.Pool) *PgTxManager {
	return &PgTxManager{pool: pool}
}

func (m *PgTxManager) Close() { m.pool.Close() }

// NewPool разбирает DSN, создаёт пул и сразу пингует базу.
func NewPool(ctx context.Context, conf PoolConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(conf.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "parse dsn")
	}
	if conf.MaxConns > 0 {
		pc.MaxConns = conf.MaxConns
	}
	timeout := conf.ConnTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pc.ConnConfig.ConnectTimeout = timeout

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping db")
	}
	return pool, nil
}

// RunMaster: READ COMMITTED, commit при nil, иначе rollback.
func (m *PgTxManager) RunMaster(ctx context.Context, fn TxFunc) error {
	return m.inTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

func (m *PgTxManager) Conn() Transaction { return m.pool }

func (m *PgTxManager) inTx(ctx context.Context, opts pgx.TxOptions, fn TxFunc) (err error) {
	tx, err := m.pool.BeginTx(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}

	defer func() {
		if p := recover(); p != nil {
			logger.Error("[DB] panic in tx, rolling back: %v", p)
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				logger.Warn("[DB] rollback: %v", rbErr)
			}
			return
		}
		if err = tx.Commit(ctx); err != nil {
			err = errors.Wrap(err, "commit tx")
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return errors.Wrap(err, "tx body")
	}
	return nil
}
