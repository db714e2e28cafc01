// Package api exposes the trend calculations over HTTP
package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mrcode/glucotrend/internal/metrics"
)

// RouterConfig controls cross-cutting router behavior
type RouterConfig struct {
	AllowedOrigins []string
	Collector      *metrics.Collector
	Logger         *slog.Logger
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	if cfg.Collector != nil {
		r.Use(cfg.Collector.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Collector.Handler()))
	}

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/series", h.Series)
		v1.POST("/statistics", h.Statistics)
		v1.POST("/phase", h.Phase)
		v1.POST("/parameters/from-logs", h.ParametersFromLogs)

		v1.GET("/session", h.GetSession)
		v1.PUT("/session", h.UpdateSession)
		v1.POST("/session/refresh", h.RefreshSession)

		v1.GET("/settings", h.GetSettings)
		v1.PUT("/settings", h.SaveSettings)

		v1.POST("/notifications/test", h.TestNotification)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if path == "/health" || strings.HasPrefix(path, "/metrics") {
			return
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
