package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	StaticDir string
	IndexFile string
}

func NewRouter(app App, cfg RouterConfig) *gin.Engine {
	metrics := NewMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(app.Logger()))
	r.Use(CORSMiddleware())
	r.Use(metrics.Middleware())

	if cfg.IndexFile != "" {
		r.StaticFile("/", cfg.IndexFile)
	}
	if cfg.StaticDir != "" {
		r.Static("/public", cfg.StaticDir)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	users := r.Group("/api/users")
	users.POST("", PostUser(app))
	users.GET("", GetUsers(app))
	users.POST("/:id/exercises", PostExercise(app))
	users.GET("/:id/logs", GetLogs(app))

	return r
}
