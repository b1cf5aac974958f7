package router

import (
	"github.com/gin-gonic/gin"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"

	"tinylink/internal/handler"
	"tinylink/internal/middleware"
)

// Pages registers extra browser routes (the dashboard) on the engine.
type Pages interface {
	Register(r *gin.Engine)
}

type Options struct {
	Logger      *zap.Logger
	Bundle      *goi18n.Bundle
	CorsOrigins []string
	Links       *handler.LinkHandler
	Pages       Pages // optional
}

// New builds the engine: JSON API under /api, the public redirect at /:code.
func New(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.ZapGinLogger(logger))
	r.Use(middleware.Cors(opts.CorsOrigins))
	r.Use(middleware.I18nMiddleware(opts.Bundle))
	r.Use(middleware.GlobalErrorMiddleware())

	api := r.Group("/api")
	{
		api.GET("/healthz", opts.Links.Health)
		api.GET("/links", opts.Links.List)
		api.POST("/links", opts.Links.Create)
		api.GET("/links/:code", opts.Links.Get)
		api.DELETE("/links/:code", opts.Links.Delete)
		api.GET("/links/:code/stats", opts.Links.DailyStats)
	}

	if opts.Pages != nil {
		opts.Pages.Register(r)
	}

	r.GET("/:code", opts.Links.Redirect)
	return r
}
