package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightinventory/config"
	"github.com/Domenick1991/flightinventory/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisCache holds search results per route and departure day.
type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), searchTTL)
}

func NewRedisCacheWithClient(client *redis.Client, searchTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, searchTTL: searchTTL}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// versionTTL outlives any cached search so a version never resets while an
// entry written under it is still readable.
const versionTTL = 24 * time.Hour

// GetSearch returns nil flights on a cache miss. The version must be handed
// back to SetSearch so results read before an invalidation are not stored.
func (c *RedisCache) GetSearch(ctx context.Context, origin, destination string, day time.Time) ([]domain.Flight, int64, error) {
	key := searchKey(origin, destination, day)

	pipe := c.client.Pipeline()
	dataCmd := pipe.Get(ctx, key)
	versionCmd := pipe.Get(ctx, versionKey(key))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	version, err := versionCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, err
	}

	data, err := dataCmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, version, nil
		}
		return nil, 0, err
	}

	var flights []domain.Flight
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, 0, err
	}
	return flights, version, nil
}

// SetSearch stores flights only if no invalidation happened since the
// version was read. A skipped write is not an error.
func (c *RedisCache) SetSearch(ctx context.Context, origin, destination string, day time.Time, version int64, flights []domain.Flight) error {
	payload, err := json.Marshal(flights)
	if err != nil {
		return err
	}
	key := searchKey(origin, destination, day)
	verKey := versionKey(key)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return errStaleSearch
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.searchTTL)
			return nil
		})
		return err
	}, verKey)
	if errors.Is(err, errStaleSearch) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

var errStaleSearch = errors.New("search result is stale")

// InvalidateSearch drops the cached result and bumps the version, so a search
// that started earlier cannot write its result back.
func (c *RedisCache) InvalidateSearch(ctx context.Context, origin, destination string, day time.Time) error {
	key := searchKey(origin, destination, day)
	verKey := versionKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, verKey)
		pipe.Expire(ctx, verKey, versionTTL)
		return nil
	})
	return err
}

func searchKey(origin, destination string, day time.Time) string {
	return fmt.Sprintf("cache:flights:search:%s:%s:%s",
		strings.ToUpper(origin), strings.ToUpper(destination), domain.DayOf(day).Format(time.DateOnly))
}

func versionKey(key string) string {
	return key + ":version"
}
