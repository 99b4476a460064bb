package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"servicecircle/internal/core/cache"
	"servicecircle/internal/domain"
	"servicecircle/internal/repo"
)

// countingUsers 统计 ListProviders 回源次数；afterList 在读完 provider 之后执行一次
type countingUsers struct {
	domain.UserRepository
	loads     int
	afterList func(ctx context.Context)
}

func (c *countingUsers) ListProviders(ctx context.Context) ([]domain.User, error) {
	c.loads++
	out, err := c.UserRepository.ListProviders(ctx)
	if hook := c.afterList; hook != nil {
		c.afterList = nil
		hook(ctx)
	}
	return out, err
}

func newCachedDirectory(t *testing.T) (*DirectorySource, *countingUsers, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = rc.Close() })

	users := &countingUsers{UserRepository: repo.NewMemoryStores().Users}
	return NewDirectorySource(users, rc, time.Minute, zap.NewNop()), users, mr
}

func TestDirectorySource_Cached(t *testing.T) {
	ctx := context.Background()
	dir, users, mr := newCachedDirectory(t)

	radius := 5.0
	p := &domain.User{Role: domain.RoleProvider, Name: "priya", Email: "p@example.com",
		Pin: &domain.Coord{Lat: 1, Lng: 1}, ServiceRadiusKm: &radius}
	require.NoError(t, users.Create(ctx, p))

	d, err := dir.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Total)
	require.Len(t, d.Configured, 1)
	assert.Equal(t, "priya", d.Configured[0].Name)
	assert.True(t, mr.Exists(directoryCacheKey+":0"))

	_, err = dir.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, users.loads, "second load is served from redis")

	dir.Invalidate(ctx)
	_, err = dir.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, users.loads)
}

func TestDirectorySource_InvalidatedOnServiceAreaSave(t *testing.T) {
	ctx := context.Background()
	dir, users, _ := newCachedDirectory(t)
	requests := repo.NewMemoryStores().Requests
	market := NewMarketplace(Deps{Users: users, Requests: requests, Directory: dir})

	p := &domain.User{Role: domain.RoleProvider, Name: "priya", Email: "p@example.com"}
	require.NoError(t, users.Create(ctx, p))
	pp := domain.Principal{ID: p.ID, Role: domain.RoleProvider}

	v, err := market.EvaluateServiceability(ctx, &domain.Coord{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.Equal(t, 0, v.ProvidersConfigured)

	require.NoError(t, market.SaveProviderServiceArea(ctx, pp, &domain.Coord{Lat: 1, Lng: 1.01}, f64(5)))

	v, err = market.EvaluateServiceability(ctx, &domain.Coord{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.True(t, v.CanServe, "stale snapshot must not survive a service area save")
}

// 回源读到旧 provider 列表后、回写之前保存了服务区：旧快照不能被后续读取命中
func TestDirectorySource_SaveDuringLoadIsNotLost(t *testing.T) {
	ctx := context.Background()
	dir, users, _ := newCachedDirectory(t)
	market := NewMarketplace(Deps{Users: users, Requests: repo.NewMemoryStores().Requests, Directory: dir})

	p := &domain.User{Role: domain.RoleProvider, Name: "priya", Email: "p@example.com"}
	require.NoError(t, users.Create(ctx, p))
	pp := domain.Principal{ID: p.ID, Role: domain.RoleProvider}
	users.afterList = func(ctx context.Context) {
		require.NoError(t, market.SaveProviderServiceArea(ctx, pp, &domain.Coord{Lat: 1, Lng: 1.01}, f64(5)))
	}

	v, err := market.EvaluateServiceability(ctx, &domain.Coord{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.False(t, v.CanServe, "this evaluation raced the save and saw the old directory")

	v, err = market.EvaluateServiceability(ctx, &domain.Coord{Lat: 1, Lng: 1})
	require.NoError(t, err)
	assert.True(t, v.CanServe)
	assert.Equal(t, 1, v.ProvidersConfigured)
	assert.Equal(t, 2, users.loads)
}

func TestDirectorySource_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	dir, users, mr := newCachedDirectory(t)
	mr.Close()

	d, err := dir.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, d.Total)
	assert.Equal(t, 1, users.loads)

	// 失效失败只记日志
	dir.Invalidate(ctx)
}
