package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/taoyao-code/smart-lock/internal/config"
	"github.com/taoyao-code/smart-lock/internal/health"
)

// Server 诊断 HTTP 服务
type Server struct {
	srv *http.Server
}

// Options 路由参数
type Options struct {
	MetricsPath    string
	MetricsHandler http.Handler
	Health         *health.Aggregator // 为空时始终就绪
	Status         func() any         // /status 返回的快照
}

// New 创建 Gin + HTTP Server，注册存活、就绪、健康报告、状态与指标路由
func New(cfg cfgpkg.HTTPConfig, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if opts.Health == nil || opts.Health.Ready(c.Request.Context()) {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if opts.Health != nil {
		r.GET("/health", func(c *gin.Context) {
			report := opts.Health.Report(c.Request.Context())
			code := http.StatusOK
			if report.Status == health.StatusUnhealthy {
				code = http.StatusServiceUnavailable
			}
			c.JSON(code, report)
		})
	}
	if opts.Status != nil {
		r.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, opts.Status())
		})
	}
	if opts.MetricsHandler != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(opts.MetricsHandler))
	}

	return &Server{srv: &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}}
}

// Handler 路由（测试用）
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start 启动 HTTP 服务（阻塞），正常关闭返回 nil
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
