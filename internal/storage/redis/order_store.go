package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/slabmarket/matching-engine/internal/storage"
	"github.com/slabmarket/matching-engine/internal/types"
)

const (
	orderKeyPrefix    = "order:"
	sideOrdersPrefix  = "side_orders:"
	openOrdersKey     = "orders:open"
	ordersTimelineKey = "orders:timeline" // sorted set, score = sequence
)

// RedisOrderStore caches orders as JSON values with side and open-order
// index sets. Entries expire after OrderTTL; Postgres below it holds the
// permanent history.
type RedisOrderStore struct {
	client   *redis.Client
	orderTTL time.Duration
}

// NewRedisOrderStore creates a Redis-backed order cache
func NewRedisOrderStore(cfg RedisConfig) (*RedisOrderStore, error) {
	client, err := NewRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &RedisOrderStore{
		client:   client,
		orderTTL: cfg.OrderTTL,
	}, nil
}

func (s *RedisOrderStore) Save(order *types.Order) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	pipe := s.client.Pipeline()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, order.ID)
	pipe.Set(ctx, orderKey, data, s.orderTTL)

	sideKey := sideOrdersPrefix + order.Side.String()
	pipe.SAdd(ctx, sideKey, order.ID)
	pipe.Expire(ctx, sideKey, s.orderTTL)

	if order.IsOpen() {
		pipe.SAdd(ctx, openOrdersKey, order.ID)
	} else {
		pipe.SRem(ctx, openOrdersKey, order.ID)
	}

	pipe.ZAdd(ctx, ordersTimelineKey, redis.Z{
		Score:  float64(order.Sequence),
		Member: order.ID,
	})

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisOrderStore) Get(orderID uint64) (*types.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	orderKey := fmt.Sprintf("%s%d", orderKeyPrefix, orderID)
	data, err := s.client.Get(ctx, orderKey).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var order types.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *RedisOrderStore) Update(order *types.Order) error {
	// Upsert; same write path as Save
	return s.Save(order)
}

func (s *RedisOrderStore) GetAll() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Newest first via the sequence timeline
	ids, err := s.client.ZRevRange(ctx, ordersTimelineKey, 0, -1).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, ids)
}

func (s *RedisOrderStore) GetOpen() []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ids, err := s.client.SMembers(ctx, openOrdersKey).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, ids)
}

func (s *RedisOrderStore) GetBySide(side types.Side) []*types.Order {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ids, err := s.client.SMembers(ctx, sideOrdersPrefix+side.String()).Result()
	if err != nil {
		return []*types.Order{}
	}
	return s.getOrdersByIDs(ctx, ids)
}

func (s *RedisOrderStore) Close() error {
	return s.client.Close()
}

func (s *RedisOrderStore) getOrdersByIDs(ctx context.Context, ids []string) []*types.Order {
	if len(ids) == 0 {
		return []*types.Order{}
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = orderKeyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return []*types.Order{}
	}

	orders := make([]*types.Order, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // expired between index read and fetch
		}
		var order types.Order
		if err := json.Unmarshal([]byte(str), &order); err != nil {
			continue
		}
		orders = append(orders, &order)
	}
	return orders
}
