package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "teamtask/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；分块上传超限时 ShouldBindJSON 报错，由 action 层回 400
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, resp.CodeTooLarge, "request body too large")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
