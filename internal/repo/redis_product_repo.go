package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MorseWayne/stock_console/internal/domain"
)

const defaultKeyPrefix = "stock_console"

// NewRedisClient 创建 Redis 客户端并测试连接
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,

		// 连接池配置
		PoolSize:     10,
		MinIdleConns: 2,

		// 超时配置
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// redisProductRepo Redis 实现
// 每个商品以 JSON 存在 {prefix}:product:{id}，ID 集合存在有序集合 {prefix}:products（score 为 ID），
// 新 ID 由 {prefix}:product:next_id 原子递增生成。
type redisProductRepo struct {
	client redis.Cmdable
	prefix string
}

// NewRedisProductRepository 创建 Redis 商品仓储，prefix 为空时使用默认前缀
func NewRedisProductRepository(client redis.Cmdable, prefix string) ProductRepository {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisProductRepo{client: client, prefix: prefix}
}

func (r *redisProductRepo) productKey(id int64) string {
	return fmt.Sprintf("%s:product:%d", r.prefix, id)
}

func (r *redisProductRepo) indexKey() string {
	return r.prefix + ":products"
}

func (r *redisProductRepo) seqKey() string {
	return r.prefix + ":product:next_id"
}

func (r *redisProductRepo) Create(ctx context.Context, product *domain.Product) error {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate product id: %w", err)
	}
	product.ID = domain.Int64Ptr(id)

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.productKey(id), data, 0)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *redisProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	val, err := r.client.Get(ctx, r.productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	var p domain.Product
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, fmt.Errorf("failed to decode product %d: %w", id, err)
	}
	return &p, nil
}

func (r *redisProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if !product.HasID() {
		return ErrNotFound
	}
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	// XX：只覆盖已存在的键
	ok, err := r.client.SetXX(ctx, r.productKey(*product.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", *product.ID, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (r *redisProductRepo) Delete(ctx context.Context, id int64) error {
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.productKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if del.Val() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *redisProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list product ids: %w", err)
	}
	if len(members) == 0 {
		return []domain.Product{}, nil
	}

	keys := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q in index: %w", m, err)
		}
		keys = append(keys, r.productKey(id))
	}

	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	out := make([]domain.Product, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// 索引与数据不一致（如删除中途），跳过
			continue
		}
		var p domain.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		out = append(out, p)
	}
	return out, nil
}
