package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/types"
)

// PostgresTradeStore persists executed trades in the trades table
type PostgresTradeStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTradeStore connects, migrates and returns the store
func NewPostgresTradeStore(cfg PostgresConfig) (*PostgresTradeStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &PostgresTradeStore{pool: pool}, nil
}

func (s *PostgresTradeStore) Save(trade *types.Trade) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO trades (trade_id, buy_order_id, sell_order_id, execution_price, quantity, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trade_id) DO NOTHING
	`
	_, err := s.pool.Exec(ctx, query,
		trade.ID, trade.BuyOrderID, trade.SellOrderID,
		trade.ExecutionPrice.String(), trade.Quantity, trade.Sequence, trade.CreatedAt,
	)
	return err
}

func (s *PostgresTradeStore) SaveBatch(trades []*types.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	query := `
		INSERT INTO trades (trade_id, buy_order_id, sell_order_id, execution_price, quantity, sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (trade_id) DO NOTHING
	`
	for _, trade := range trades {
		batch.Queue(query,
			trade.ID, trade.BuyOrderID, trade.SellOrderID,
			trade.ExecutionPrice.String(), trade.Quantity, trade.Sequence, trade.CreatedAt,
		)
	}

	return s.pool.SendBatch(ctx, batch).Close()
}

// GetRecent returns up to limit trades, newest first
func (s *PostgresTradeStore) GetRecent(limit int) ([]*types.Trade, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT trade_id, buy_order_id, sell_order_id, execution_price::text, quantity, sequence, created_at
		FROM trades
		ORDER BY created_at DESC, trade_id DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*types.Trade
	for rows.Next() {
		var (
			trade    types.Trade
			priceStr string
		)
		err := rows.Scan(
			&trade.ID, &trade.BuyOrderID, &trade.SellOrderID,
			&priceStr, &trade.Quantity, &trade.Sequence, &trade.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		trade.ExecutionPrice, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt price for trade %d: %w", trade.ID, err)
		}
		trades = append(trades, &trade)
	}
	return trades, rows.Err()
}

func (s *PostgresTradeStore) Close() error {
	s.pool.Close()
	return nil
}
