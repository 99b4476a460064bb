package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"servicecircle/internal/core/cache"
	"servicecircle/internal/domain"
	"servicecircle/internal/matching"
)

const directoryCacheKey = "provider_directory"

// DirectorySource 加载 provider 目录快照；配置了 Redis 时走缓存
type DirectorySource struct {
	users domain.UserRepository
	cache *cache.Cache // 可为 nil
	ttl   time.Duration
	log   *zap.Logger
}

func NewDirectorySource(users domain.UserRepository, c *cache.Cache, ttl time.Duration, l *zap.Logger) *DirectorySource {
	if l == nil {
		l = zap.NewNop()
	}
	return &DirectorySource{users: users, cache: c, ttl: ttl, log: l}
}

func (d *DirectorySource) Load(ctx context.Context) (matching.Directory, error) {
	if d.cache == nil || d.ttl <= 0 {
		return d.load(ctx)
	}
	return cache.GetOrLoadJSON(d.cache, ctx, directoryCacheKey, d.ttl, d.load)
}

// Invalidate provider 服务区或 provider 数量变化后调用；失败只记日志，等 TTL 过期
func (d *DirectorySource) Invalidate(ctx context.Context) {
	if d.cache == nil {
		return
	}
	if err := d.cache.Invalidate(ctx, directoryCacheKey); err != nil {
		d.log.Warn("directory cache invalidate failed", zap.Error(err))
	}
}

func (d *DirectorySource) load(ctx context.Context) (matching.Directory, error) {
	providers, err := d.users.ListProviders(ctx)
	if err != nil {
		return matching.Directory{}, err
	}
	directoryLoads.Inc()
	return matching.BuildDirectory(providers), nil
}
