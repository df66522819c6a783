package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/slabmarket/matching-engine/internal/storage"
	"github.com/slabmarket/matching-engine/internal/types"
)

// PostgresOrderStore persists orders in the order_book table. Prices travel
// as their exact decimal string and map to NUMERIC columns, never float.
type PostgresOrderStore struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStore connects, migrates and returns the store
func NewPostgresOrderStore(cfg PostgresConfig) (*PostgresOrderStore, error) {
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

	return &PostgresOrderStore{pool: pool}, nil
}

func (s *PostgresOrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO order_book (order_id, side, price, quantity, filled_quantity, sequence,
			spec_id, grade, grading_company, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
		ON CONFLICT (order_id) DO UPDATE SET
			filled_quantity = EXCLUDED.filled_quantity,
			updated_at = now()
	`

	_, err := s.pool.Exec(ctx, query,
		order.ID, order.Side.String(), order.Price.String(), order.Quantity,
		order.FilledQuantity, order.Sequence,
		order.Card.SpecID, order.Card.Grade, order.Card.GradingCompany,
		order.CreatedAt,
	)
	return err
}

func (s *PostgresOrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT order_id, side, price::text, quantity, filled_quantity, sequence,
			spec_id, grade, grading_company, created_at
		FROM order_book
		WHERE order_id = $1
	`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return order, err
}

func (s *PostgresOrderStore) Update(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		UPDATE order_book
		SET filled_quantity = $2, updated_at = now()
		WHERE order_id = $1
	`
	tag, err := s.pool.Exec(ctx, query, order.ID, order.FilledQuantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *PostgresOrderStore) GetAll() []*types.Order {
	return s.query(`
		SELECT order_id, side, price::text, quantity, filled_quantity, sequence,
			spec_id, grade, grading_company, created_at
		FROM order_book
		ORDER BY created_at DESC
	`)
}

func (s *PostgresOrderStore) GetOpen() []*types.Order {
	return s.query(`
		SELECT order_id, side, price::text, quantity, filled_quantity, sequence,
			spec_id, grade, grading_company, created_at
		FROM order_book
		WHERE filled_quantity < quantity
		ORDER BY created_at DESC
	`)
}

func (s *PostgresOrderStore) GetBySide(side types.Side) []*types.Order {
	return s.query(`
		SELECT order_id, side, price::text, quantity, filled_quantity, sequence,
			spec_id, grade, grading_company, created_at
		FROM order_book
		WHERE side = $1
		ORDER BY created_at DESC
	`, side.String())
}

func (s *PostgresOrderStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresOrderStore) query(sql string, args ...interface{}) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return []*types.Order{}
	}
	defer rows.Close()

	var orders []*types.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*types.Order, error) {
	var (
		order     types.Order
		sideStr   string
		priceStr  string
		createdAt time.Time
	)
	err := row.Scan(
		&order.ID, &sideStr, &priceStr, &order.Quantity, &order.FilledQuantity,
		&order.Sequence, &order.Card.SpecID, &order.Card.Grade,
		&order.Card.GradingCompany, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if sideStr == "bid" {
		order.Side = types.Bid
	} else {
		order.Side = types.Ask
	}
	order.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt price for order %d: %w", order.ID, err)
	}
	order.CreatedAt = createdAt
	return &order, nil
}
