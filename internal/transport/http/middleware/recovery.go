package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	resp "servicecircle/internal/transport/http/response"
)

func Recovery(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				l.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				abort(c, resp.CodeServerError, "internal error")
			}
		}()
		c.Next()
	}
}
