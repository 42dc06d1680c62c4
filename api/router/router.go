package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fleetcollector/fleetcollector/api/handler"
	"github.com/fleetcollector/fleetcollector/internal/config"
	"github.com/fleetcollector/fleetcollector/internal/service"
	"github.com/fleetcollector/fleetcollector/pkg/logger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, launcher *service.Launcher) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())

	collectorHandler := handler.NewCollectorHandler(launcher, cfg)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":   "Fleet Collector",
			"status": "running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", collectorHandler.Health)

		v1.POST("/collect", collectorHandler.StartRun)

		runs := v1.Group("/runs")
		{
			runs.GET("", collectorHandler.ListRuns)
			runs.GET("/:id", collectorHandler.GetRun)
			runs.GET("/:id/records", collectorHandler.ListRecords)
			runs.GET("/:id/report", collectorHandler.DownloadReport)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "接口不存在",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}

// RequestIDMiddleware 请求ID中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// LoggingMiddleware 日志中间件
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		logger.Infof("HTTP %s %s status=%d duration=%s client=%s request_id=%s",
			c.Request.Method, c.Request.URL.Path, statusCode, duration,
			c.ClientIP(), c.GetString("request_id"))

		if statusCode >= 400 {
			logger.Errorf("HTTP error %s %s status=%d", c.Request.Method, c.Request.URL.Path, statusCode)
		}
	}
}
