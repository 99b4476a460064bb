package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "servicecircle",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Cache lookups by result (hit / miss / unavailable)",
}, []string{"result"})

func init() { prometheus.MustRegister(lookups) }

// Cache Redis 读穿缓存；所有 key 自动加 prefix。
// 每个逻辑 key 带一个代数计数器 <key>:gen，数据存在 <key>:<gen> 下；
// Invalidate 只递增代数，失效前已开始的回源只会写进没人再读的旧 key。
type Cache struct {
	RDB         *redis.Client
	prefix      string
	loadTimeout time.Duration
	sf          singleflight.Group
}

type Option func(*Cache)

// WithPrefix 多个部署共用一个 Redis 时隔离 key
func WithPrefix(p string) Option { return func(c *Cache) { c.prefix = p } }

// WithLoadTimeout 合并回源的超时；回源不随发起请求的 ctx 取消
func WithLoadTimeout(d time.Duration) Option { return func(c *Cache) { c.loadTimeout = d } }

func New(addr, pass string, db int, opts ...Option) *Cache {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), opts...)
}

func NewWithClient(rdb *redis.Client, opts ...Option) *Cache {
	c := &Cache{RDB: rdb, loadTimeout: 5 * time.Second}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }
func (c *Cache) Close() error                   { return c.RDB.Close() }
func (c *Cache) Key(k string) string            { return c.prefix + k }
func (c *Cache) genKey(k string) string         { return c.prefix + k + ":gen" }

// Generation 当前代数；计数器不存在时为 0
func (c *Cache) Generation(ctx context.Context, key string) (int64, error) {
	g, err := c.RDB.Get(ctx, c.genKey(key)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return g, err
}

// GetOrLoad 先读当前代数下的缓存；未命中时 singleflight 合并回源并回写。
// Redis 报错（非 redis.Nil）时只回源，不再尝试回写。
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	gen, err := c.Generation(ctx, key)
	if err != nil {
		lookups.WithLabelValues("unavailable").Inc()
		return load(ctx)
	}
	full := c.Key(key) + ":" + strconv.FormatInt(gen, 10)

	b, err := c.RDB.Get(ctx, full).Bytes()
	switch {
	case err == nil:
		lookups.WithLabelValues("hit").Inc()
		return b, nil
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues("miss").Inc()
	default:
		lookups.WithLabelValues("unavailable").Inc()
		return load(ctx)
	}

	// sf key 含代数：失效之后的调用者不会并入失效前的回源
	v, err, _ := c.sf.Do(full, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		b, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(lctx, full, b, ttl).Err()
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 递增各 key 的代数；写路径在数据变更提交后调用
func (c *Cache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := c.RDB.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, k := range keys {
			p.Incr(ctx, c.genKey(k))
		}
		return nil
	})
	return err
}
