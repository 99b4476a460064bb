package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/core/config"
	"servicecircle/internal/core/server"
	"servicecircle/internal/domain"
	mdw "servicecircle/internal/transport/http/middleware"
)

// NewAdminEngine 后台：ginzap 日志 + CORS 的基础引擎，/admin/v1 统一要求 admin 角色
func NewAdminEngine(l *zap.Logger, jwter *auth.JWTer, lim config.Limits, reg *Registry) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(lim.MaxConcurrent, lim.RequestTimeout()/2),
		mdw.Timeout(lim.RequestTimeout()),
		mdw.Metrics(),
	)

	r.GET("/health", health)
	r.GET("/metrics", mdw.MetricsHandler())

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(jwter, domain.RoleAdmin))
	reg.MountAdmin(admin)
	return r
}
