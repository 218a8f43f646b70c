package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"teamtask/internal/core/config"
	"teamtask/internal/core/server"
	"teamtask/internal/domain"
	"teamtask/internal/service"
	mdw "teamtask/internal/transport/http/middleware"
	resp "teamtask/internal/transport/http/response"
)

type Deps struct {
	Log     *zap.Logger
	Gate    *service.AccessGate
	Limits  config.Limits // 各项为 0 时不启用对应中间件
	Origins []string
	Mode    string
	Ready   func(ctx context.Context) error // /health 探活，可为空
	Modules []any                           // handler 列表，按实现的接口分组挂载
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	r := server.NewRouter(server.Options{Mode: d.Mode, AllowOrigins: d.Origins})

	// 中间件：日志与指标放在 recovery 外层，panic 的请求也会被记录
	r.Use(mdw.RequestID(), mdw.AccessLog(l), mdw.Metrics(), mdw.Recovery(l))
	lim := d.Limits
	if lim.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(lim.RPS), max(1, lim.Burst)))
	}
	if lim.PerIPRPS > 0 {
		r.Use(mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), max(1, lim.PerIPBurst), 10*time.Minute))
	}
	if lim.MaxConcurrent > 0 {
		r.Use(mdw.ConcurrencyLimit(lim.MaxConcurrent))
	}
	if lim.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(lim.MaxBodyBytes))
	}
	if lim.TimeoutSec > 0 {
		r.Use(mdw.Timeout(time.Duration(lim.TimeoutSec) * time.Second))
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "TeamTask API is running!"})
	})
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				resp.Abort(c, resp.CodeUnavailable, "not ready")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) { resp.Abort(c, resp.CodeNotFound, "route not found") })

	reg := &Registry{}
	reg.Register(d.Modules...)

	// 前缀
	api := r.Group("/api")
	reg.MountPublic(api)

	// 鉴权分组：身份与角色每次从用户表重新解析
	authed := api.Group("")
	authed.Use(mdw.AuthJWT(d.Gate))
	reg.MountAPI(authed)

	mgr := authed.Group("")
	mgr.Use(mdw.RequireRole(domain.RoleManager))
	reg.MountManager(mgr)

	return r
}
