package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type snapshot struct {
	Total int      `json:"total"`
	Names []string `json:"names"`
}

func TestGetOrLoadJSON(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, c.Ping(ctx))

	var calls int32
	load := func(context.Context) (snapshot, error) {
		atomic.AddInt32(&calls, 1)
		return snapshot{Total: 2, Names: []string{"a", "b"}}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, snapshot{Total: 2, Names: []string{"a", "b"}}, got)

	got, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	mr.FastForward(2 * time.Minute)
	_, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSON_BadEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("k:0", `{"total":"not-a-number"}`))

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (snapshot, error) {
		return snapshot{Total: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.Total)
	gen, err := c.Generation(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	boom := errors.New("db down")
	require.NoError(t, mr.Set("k:1", "{"))
	_, err = GetOrLoadJSON(c, ctx, "k", time.Minute, func(context.Context) (snapshot, error) {
		return snapshot{}, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPrefix(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), WithPrefix("sc:"))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("v"), nil })
	require.NoError(t, err)
	assert.True(t, mr.Exists("sc:k:0"))
	assert.False(t, mr.Exists("k:0"))

	require.NoError(t, c.Invalidate(ctx, "k"))
	v, err := mr.Get("sc:k:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestGetOrLoad_RedisDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	mr.Close()

	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("v"), nil })
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))
}

func TestGetOrLoad_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	boom := errors.New("db down")

	_, err := c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k:0"))
}

func TestGetOrLoad_Singleflight(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	var calls int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrLoad(ctx, "hot", time.Minute, load)
			assert.NoError(t, err)
			assert.Equal(t, "v", string(b))
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	var calls int32
	load := func(context.Context) ([]byte, error) {
		n := atomic.AddInt32(&calls, 1)
		return []byte{byte('0' + n)}, nil
	}

	require.NoError(t, c.Invalidate(ctx))
	b, err := c.GetOrLoad(ctx, "a", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "1", string(b))

	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	b, err = c.GetOrLoad(ctx, "a", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "2", string(b))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// 回源期间发生失效：旧快照只能落在旧代数下，下一次读必须重新回源
func TestInvalidate_DuringLoad(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	var calls int32
	load := func(ctx context.Context) ([]byte, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			require.NoError(t, c.Invalidate(ctx, "dir"))
			return []byte("stale"), nil
		}
		return []byte("fresh"), nil
	}

	b, err := c.GetOrLoad(ctx, "dir", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "stale", string(b))
	assert.True(t, mr.Exists("dir:0"))

	b, err = c.GetOrLoad(ctx, "dir", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(b))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// 合并回源不随第一个调用者的 ctx 取消
func TestGetOrLoad_LoadSurvivesCallerCancel(t *testing.T) {
	c, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())

	entered := make(chan struct{})
	release := make(chan struct{})
	load := func(lctx context.Context) ([]byte, error) {
		close(entered)
		<-release
		if err := lctx.Err(); err != nil {
			return nil, err
		}
		return []byte("v"), nil
	}

	type result struct {
		b   []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
		done <- result{b, err}
	}()
	<-entered
	cancel()
	close(release)

	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, "v", string(r.b))
}
