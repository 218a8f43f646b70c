package middleware

import (
	"github.com/gin-gonic/gin"

	"teamtask/internal/domain"
	"teamtask/internal/service"
	"teamtask/internal/transport/http/ez"
)

const (
	KeyUserID    = "userId"
	KeyRole      = "role"
	KeyPrincipal = "principal"
)

// AuthJWT 解析 Bearer token，并从用户表重新加载身份与角色
func AuthJWT(gate *service.AccessGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := gate.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			ez.WriteError(c, err)
			return
		}
		c.Set(KeyUserID, p.ID)
		c.Set(KeyRole, string(p.Role))
		c.Set(KeyPrincipal, p)
		c.Next()
	}
}

// RequireRole 分组级角色限制，必须挂在 AuthJWT 之后
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := service.Authorize(domain.Role(c.GetString(KeyRole)), roles...); err != nil {
			ez.WriteError(c, err)
			return
		}
		c.Next()
	}
}

// Caller 取出当前请求的调用者；未经过 AuthJWT 时 ok=false
func Caller(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
