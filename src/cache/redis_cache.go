package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"www.github.com/Wanderer0074348/Yahmi/src/config"
	"www.github.com/Wanderer0074348/Yahmi/src/models"
)

const indexKey = "completion:index"

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisCache shares completions between processes. Each entry carries a redis
// TTL; a sorted set ordered by creation time drives the max-entries eviction.
type RedisCache struct {
	client     *redis.Client
	ttl        time.Duration
	maxEntries int
}

func NewRedisCache(client *redis.Client, ttl time.Duration, maxEntries int) *RedisCache {
	return &RedisCache{
		client:     client,
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*models.Completion, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// expired or evicted, drop it from the index too
		c.client.ZRem(ctx, indexKey, key)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var completion models.Completion
	if err := json.Unmarshal([]byte(val), &completion); err != nil {
		return nil, err
	}

	return &completion, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, completion *models.Completion) error {
	data, err := json.Marshal(completion)
	if err != nil {
		return err
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(time.Now().UnixNano()), Member: key})
	card := pipe.ZCard(ctx, indexKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store completion: %w", err)
	}

	if c.maxEntries > 0 && card.Val() > int64(c.maxEntries) {
		return c.evict(ctx, card.Val()-int64(c.maxEntries))
	}

	return nil
}

func (c *RedisCache) evict(ctx context.Context, count int64) error {
	popped, err := c.client.ZPopMin(ctx, indexKey, count).Result()
	if err != nil {
		return fmt.Errorf("failed to evict completions: %w", err)
	}

	keys := make([]string, 0, len(popped))
	for _, z := range popped {
		if member, ok := z.Member.(string); ok {
			keys = append(keys, member)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	return c.client.Del(ctx, keys...).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.ZRem(ctx, indexKey, key)
	_, err := pipe.Exec(ctx)
	return err
}

// Len counts indexed entries younger than the TTL.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-c.ttl).UnixNano()
	if err := c.client.ZRemRangeByScore(ctx, indexKey, "-inf", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return 0, err
	}

	n, err := c.client.ZCard(ctx, indexKey).Result()
	return int(n), err
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
