// Package server assembles the HTTP surface: the update endpoint plus
// health, metrics, and the middleware stack.
package server

import (
	"net/http"
	"os"
	"time"

	"github.com/autodns/autodns/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the Gin router with the full middleware stack and routes.
func NewRouter(cfg config.Config, h *UpdateHandler, logger *zap.Logger) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	router.Use(requestID())

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{"GET", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Accept"},
			MaxAge:       12 * time.Hour,
		}))
	}

	if cfg.RequestsPerSecond > 0 {
		router.Use(rateLimiter(cfg.RequestsPerSecond, cfg.RequestsPerSecond*2))
	}

	router.Use(prometheusMiddleware())
	router.Use(requestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.Register(router)

	return router
}
