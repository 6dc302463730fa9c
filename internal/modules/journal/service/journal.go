package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"futures_bot/internal/models"
	"futures_bot/pkg/db"
	"futures_bot/pkg/logger"
)

const createTable = `
CREATE TABLE IF NOT EXISTS order_journal (
	id          BIGSERIAL PRIMARY KEY,
	order_id    BIGINT           NOT NULL,
	symbol      TEXT             NOT NULL,
	side        TEXT             NOT NULL,
	order_type  TEXT             NOT NULL,
	quantity    DOUBLE PRECISION NOT NULL,
	price       DOUBLE PRECISION,
	status      TEXT             NOT NULL,
	placed_at   TIMESTAMPTZ      NOT NULL,
	recorded_at TIMESTAMPTZ      NOT NULL DEFAULT now()
)`

const createIndex = `CREATE INDEX IF NOT EXISTS order_journal_symbol_idx ON order_journal (symbol, placed_at)`

const insertOrder = `
INSERT INTO order_journal (order_id, symbol, side, order_type, quantity, price, status, placed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Journal пишет аудит выставленных ордеров в Postgres. Только запись, состояние стратегий
// из журнала не восстанавливается.
type Journal struct {
	db      db.TxManager
	timeout time.Duration
}

func NewJournal(tm db.TxManager) *Journal {
	return &Journal{db: tm, timeout: 3 * time.Second}
}

// Migrate создаёт таблицу и индекс одной транзакцией.
func (j *Journal) Migrate(ctx context.Context) error {
	return j.db.RunMaster(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createTable); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, createIndex)
		return err
	})
}

// Record пишет ордер. Ошибка БД не должна ломать торговлю: только лог.
func (j *Journal) Record(ctx context.Context, r models.OrderResult) {
	// запись не должна отменяться вместе с HTTP-запросом
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.timeout)
	defer cancel()

	_, err := j.db.Conn().Exec(ctx, insertOrder,
		r.OrderID, r.Symbol, string(r.Side), string(r.OrderType), r.Quantity, r.Price, string(r.Status), r.Timestamp,
	)
	if err != nil {
		logger.Error("[JOURNAL] order %d %s: %v", r.OrderID, r.Symbol, err)
		return
	}
	logger.Debug("[JOURNAL] order %d %s recorded", r.OrderID, r.Symbol)
}

// Log пишет ордера только в лог, без БД.
type Log struct{}

func (Log) Record(_ context.Context, r models.OrderResult) {
	if r.Price == nil {
		logger.Info("[JOURNAL] %s %s %s %v @ pending id=%d status=%s", r.OrderType, r.Side, r.Symbol, r.Quantity, r.OrderID, r.Status)
		return
	}
	logger.Info("[JOURNAL] %s %s %s %v @ %v id=%d status=%s", r.OrderType, r.Side, r.Symbol, r.Quantity, *r.Price, r.OrderID, r.Status)
}
