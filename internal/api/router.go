// api/router.go
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"commonfields/internal/store"
)

// NewRouter собирает gin-движок со всеми маршрутами.
func NewRouter(storage *store.Storage, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/api/meta", MetaListHandler(storage))
	r.GET("/api/meta/:module/:entity", MetaEntityHandler(storage))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/:module/:entity", CreateHandler(storage, log))
		apiGroup.GET("/:module/:entity", ListHandler(storage))
		apiGroup.GET("/:module/:entity/:id", GetOneHandler(storage))
		apiGroup.PATCH("/:module/:entity/:id", UpdatePartialHandler(storage, log))
		apiGroup.DELETE("/:module/:entity/:id", DeleteHandler(storage))
	}
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
