package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = errors.New("cache miss")

// Cache 通用缓存封装
//
// 使用 singleflight 合并同 key 的并发回源，避免缓存击穿。
type Cache struct {
	client *redis.Client
	sf     singleflight.Group
}

// NewCache 创建缓存
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get 读取缓存，未命中返回 ErrCacheMiss
func (c *Cache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return apperrors.Wrap(err, apperrors.CodeCacheError, "读取缓存失败")
	}
	return json.Unmarshal(data, dest)
}

// Set 写入缓存
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "序列化缓存值失败")
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "写入缓存失败")
	}
	return nil
}

// Delete 删除缓存
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "删除缓存失败")
	}
	return nil
}

// GetOrLoad 读取缓存，未命中时通过 loader 回源并回填
//
// 同一 key 的并发回源会被合并为一次 loader 调用。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, dest any, loader func(ctx context.Context) (any, error)) error {
	if err := c.Get(ctx, key, dest); err == nil {
		return nil
	} else if !errors.Is(err, ErrCacheMiss) {
		// 缓存故障时直接回源，不让 Redis 故障放大为请求失败
		val, lerr := loader(ctx)
		if lerr != nil {
			return lerr
		}
		return assign(val, dest)
	}

	val, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return err
	}
	return assign(val, dest)
}

// assign 通过 JSON 往返把 loader 返回值写入 dest
func assign(val any, dest any) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
