package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetJSON decodes the value stored at key into v.
// It reports false without error when the key does not exist.
func GetJSON(ctx context.Context, client redis.Cmdable, key string, v any) (bool, error) {
	data, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrCacheRead, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Join(ErrCacheDecode, err)
	}
	return true, nil
}

// SetJSON stores v at key as JSON with the given expiration.
func SetJSON(ctx context.Context, client redis.Cmdable, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrCacheDecode, err)
	}
	if err := client.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Join(ErrCacheWrite, err)
	}
	return nil
}

// DeleteByPrefix removes every key starting with prefix.
func DeleteByPrefix(ctx context.Context, client redis.Cmdable, prefix string) error {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return errors.Join(ErrCacheWrite, err)
		}
		if len(keys) > 0 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return errors.Join(ErrCacheWrite, err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
