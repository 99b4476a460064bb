package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "servicecircle/internal/transport/http/response"
)

// ConcurrencyLimit 同时处理的请求数上限；排队超过 wait 直接返回 busy。
// max <= 0 不限制，wait <= 0 表示只等请求自身的 ctx。
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if !sem.TryAcquire(1) {
			ctx := c.Request.Context()
			if wait > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, wait)
				defer cancel()
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				abort(c, resp.CodeServerError, "server busy")
				return
			}
		}
		defer sem.Release(1)
		c.Next()
	}
}
