package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "servicecircle/internal/transport/http/response"
)

// KeyRespCode 信封里的业务码；HTTP 状态恒为 200，监控按它区分结果
const KeyRespCode = "resp_code"

func SetRespCode(c *gin.Context, code int) { c.Set(KeyRespCode, code) }

// RespCode 未记录时按 HTTP 状态推断
func RespCode(c *gin.Context) int {
	if v, ok := c.Get(KeyRespCode); ok {
		if code, ok := v.(int); ok {
			return code
		}
	}
	if s := c.Writer.Status(); s != http.StatusOK {
		return s
	}
	return resp.CodeOK
}

func abort(c *gin.Context, code int, msg string) {
	SetRespCode(c, code)
	c.AbortWithStatusJSON(http.StatusOK, resp.Error(code, msg))
}
