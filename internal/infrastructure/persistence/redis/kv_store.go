package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// KVStore repository.KeyValueStore 的 Redis 实现。
// 阅读位置与最近阅读列表都存在这里，不设过期时间。
type KVStore struct {
	client *Client
}

// NewKVStore 创建键值存储
func NewKVStore(client *Client) *KVStore {
	return &KVStore{client: client}
}

// GetString 读取字符串值。键不存在返回 ("", false, nil)。
func (s *KVStore) GetString(ctx context.Context, key string) (string, bool, error) {
	ctx, span := tracer.Start(ctx, "redis.KVStore.GetString",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	result, err := s.client.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		span.RecordError(err)
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return result, true, nil
}

// SetString 写入字符串值
func (s *KVStore) SetString(ctx context.Context, key, value string) error {
	ctx, span := tracer.Start(ctx, "redis.KVStore.SetString",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := s.client.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete 删除键。删除不存在的键是空操作。
func (s *KVStore) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "redis.KVStore.Delete",
		trace.WithAttributes(attribute.String("redis.key", key)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, key).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
