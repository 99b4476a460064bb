package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"servicecircle/internal/core/auth"
	"servicecircle/internal/domain"
	resp "servicecircle/internal/transport/http/response"
)

const keyPrincipal = "principal"

// AuthJWT 校验 Bearer token 并写入 principal；requireRole 为空表示任意角色
func AuthJWT(j *auth.JWTer, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			abort(c, resp.CodeUnauthorized, "Login required")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		p := claims.Principal()
		if requireRole != "" && p.Role != requireRole {
			abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, p domain.Principal) { c.Set(keyPrincipal, p) }

func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(keyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
