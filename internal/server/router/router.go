package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(jobs *handlers.JobHandler, batches *handlers.BatchHandler, chemicals *handlers.ChemicalHandler, storeH *handlers.StoreHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/jobs", jobs.Save)
	r.GET("/jobs", jobs.List)
	r.GET("/jobs/:id", jobs.Get)
	r.POST("/jobs/:id/archive", jobs.Archive)
	r.DELETE("/jobs/:id", jobs.Delete)

	r.POST("/batches", batches.Create)
	r.GET("/batches", batches.List)
	r.GET("/batches/:id", batches.Get)
	r.POST("/batches/:id/dumps", batches.Dump)

	r.PUT("/chemicals", chemicals.Upsert)
	r.GET("/chemicals", chemicals.List)
	r.GET("/chemicals/low-stock", chemicals.LowStock)
	r.DELETE("/chemicals/:name", chemicals.Delete)

	r.GET("/store/settings", storeH.Settings)
	r.PUT("/store/settings", storeH.UpdateSettings)
	r.GET("/store/export", storeH.Export)
	r.POST("/store/import", storeH.Import)
	r.GET("/store/backups", storeH.Backups)
	r.POST("/store/backups", storeH.Snapshot)
	r.POST("/store/backups/:id/restore", storeH.Restore)
	r.POST("/store/export/sheets", storeH.ExportSheets)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
