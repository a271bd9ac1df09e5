// Package api exposes the bridge operations over HTTP.
//
// @title        atmo API
// @version      1.0
// @description  Scan, pair and control media streaming devices on the local network.
// @BasePath     /api/v1
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mabino/atmo/docs"
	"github.com/mabino/atmo/pkg/api/handlers"
	"github.com/mabino/atmo/pkg/bridge"
	"github.com/mabino/atmo/pkg/device/schema"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine    *gin.Engine
	bridge    *bridge.Bridge
	validator *schema.Validator
}

// NewRouter creates a new API router
func NewRouter(b *bridge.Bridge, validator *schema.Validator) *Router {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:    engine,
		bridge:    b,
		validator: validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.bridge)
	r.engine.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		devicesHandler := handlers.NewDevicesHandler(r.bridge)
		controlHandler := handlers.NewControlHandler(r.bridge, r.validator)
		pairingHandler := handlers.NewPairingHandler(r.bridge, r.validator)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)

			devices.POST("/:id/command", controlHandler.SendCommand)
			devices.POST("/:id/power", controlHandler.Power)

			devices.POST("/:id/pairing", pairingHandler.Pair)
			devices.DELETE("/:id/pairing/:protocol", pairingHandler.Unpair)
		}
	}
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
