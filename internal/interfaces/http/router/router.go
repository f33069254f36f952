// Package router 提供 HTTP 路由配置
package router

import (
	"z-reader-session-api/internal/config"
	"z-reader-session-api/internal/interfaces/http/handler"
	"z-reader-session-api/internal/interfaces/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的全部处理器，显式构造注入
type Handlers struct {
	Health     *handler.HealthHandler
	Session    *handler.SessionHandler
	Bookmark   *handler.BookmarkHandler
	Enrichment *handler.EnrichmentHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers Handlers
	limiter  middleware.RateLimiter
}

// New 创建新的路由器
func New(cfg *config.Config, handlers Handlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	r := &Router{
		engine:   engine,
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}

	r.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           r.cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: r.cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             r.cfg.Security.RateLimit.Burst,
	}, r.limiter))
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	// 系统端点
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	{
		v1.GET("/recent", r.handlers.Session.Recent)

		books := v1.Group("/books/:bid")
		{
			// 会话生命周期
			books.POST("/session", r.handlers.Session.Open)
			books.GET("/session", r.handlers.Session.Get)
			books.DELETE("/session", r.handlers.Session.Close)
			books.POST("/session/reload", r.handlers.Session.Reload)

			// 阅读位置
			books.POST("/session/navigate", r.handlers.Session.Navigate)
			books.PUT("/session/scroll", r.handlers.Session.UpdateScroll)

			// 章节
			books.GET("/chapters", r.handlers.Session.ListChapters)
			books.GET("/chapters/:ref/headings", r.handlers.Session.ChapterHeadings)

			// 书签
			books.GET("/bookmarks", r.handlers.Bookmark.List)
			books.POST("/bookmarks/refresh", r.handlers.Bookmark.Refresh)
			books.POST("/bookmarks/toggle", r.handlers.Bookmark.Toggle)

			// 内容增强
			books.GET("/enrich", r.handlers.Enrichment.Status)
			books.GET("/enrich/:feature", r.handlers.Enrichment.FeatureStatus)
			books.POST("/enrich/:feature", r.handlers.Enrichment.Run)
		}
	}
}
