package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/core/config"
	"servicecircle/internal/core/server"
	mdw "servicecircle/internal/transport/http/middleware"
)

// commonMiddleware 用户端与后台共用的保护链
func commonMiddleware(l *zap.Logger, lim config.Limits) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RateRPS), lim.RateBurst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.MaxConcurrent, lim.RequestTimeout()/2),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout()),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	}
}

func health(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) }

// NewAPIEngine 用户端：/api/v1 下挂 registry 里的模块
func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, lim config.Limits, reg *Registry) *gin.Engine {
	r := gin.New()
	r.Use(commonMiddleware(l, lim)...)
	r.Use(server.CORS(http.MethodGet, http.MethodPost, http.MethodOptions))

	r.GET("/health", health)
	r.GET("/metrics", mdw.MetricsHandler())

	api := r.Group("/api/v1")
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(jwter, ""))

	reg.MountAPI(api, authed)
	return r
}
