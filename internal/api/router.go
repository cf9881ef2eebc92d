package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"energy-admin/config"
	"energy-admin/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, tokens mw.TokenParser, cfg config.ServerConfig, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestID(), mw.Logger(log))

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, 10*time.Minute)
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)

	v1 := r.Group("/api/v1")
	v1.Use(mw.RateLimiter(limiter))
	{
		v1.POST("/auth/signin", h.SignIn)

		authed := v1.Group("", mw.JWTAuth(tokens))
		authed.GET("/dashboard", mw.Cache(cacheStore, cfg.CacheTTL), Dashboard)
		authed.GET("/:table", h.List)
		authed.GET("/:table/exists", h.Exists)
		authed.POST("/:table", h.Create)
		authed.PATCH("/:table/:id", h.Update)
	}
	return r
}
