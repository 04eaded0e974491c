// Package api wires the gin engine, middleware chain and controllers.
package api

import (
	"salesvc/api/health"
	"salesvc/api/middleware"
	"salesvc/api/sale"
	"salesvc/config"

	"github.com/gin-gonic/gin"
)

type Router struct {
	engine           *gin.Engine
	config           *config.Config
	healthController *health.Controller
	saleController   *sale.Controller
}

func NewRouter(
	cfg *config.Config,
	healthController *health.Controller,
	saleController *sale.Controller,
) *Router {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Middleware order matters: request ID first, recovery before anything
	// that can panic, logging before CORS and rate limiting.
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.RecoveryMiddleware())
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.CORSMiddleware(&cfg.CORS))
	engine.Use(middleware.RateLimitMiddleware(&cfg.Server.RateLimit))

	return &Router{
		engine:           engine,
		config:           cfg,
		healthController: healthController,
		saleController:   saleController,
	}
}

func (r *Router) SetupRoutes() {
	apiGroup := r.engine.Group("/api/v1")
	{
		r.healthController.RegisterRoutes(apiGroup)
		r.saleController.RegisterRoutes(apiGroup)
	}

	r.engine.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"name":    r.config.App.Name,
			"version": r.config.App.Version,
			"env":     r.config.App.Env,
			"health":  "/api/v1/health",
		})
	})
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
