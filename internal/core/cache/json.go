package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetOrLoadJSON 按 JSON 存取 T。
// 缓存内容无法解码（例如结构升级后的旧快照）时删除该 key 并直接回源。
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var zero T
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		_ = c.Invalidate(ctx, key)
		v, lerr := load(ctx)
		if lerr != nil {
			return zero, fmt.Errorf("reload %s after bad cache entry: %w", key, lerr)
		}
		return v, nil
	}
	return out, nil
}
