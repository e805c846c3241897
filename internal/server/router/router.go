package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/milltrack/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(h *handlers.Set, corsOrigins []string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(corsMiddleware(corsOrigins))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/state", h.Dashboard.State)
		api.GET("/notification", h.Dashboard.Notification)
		api.POST("/theme/toggle", h.Dashboard.ToggleTheme)

		api.POST("/setup", h.Settings.CompleteSetup)
		api.GET("/settings", h.Settings.Get)
		api.PUT("/settings", h.Settings.Update)
		api.DELETE("/settings", h.Settings.Reset)

		api.GET("/batches", h.Batches.List)
		api.POST("/batches", h.Batches.Create)
		api.PUT("/batches/:id", h.Batches.Update)
		api.DELETE("/batches/:id", h.Batches.Delete)

		api.GET("/batch-types", h.BatchTypes.List)
		api.POST("/batch-types", h.BatchTypes.Create)
		api.PUT("/batch-types/:id", h.BatchTypes.Update)
		api.DELETE("/batch-types/:id", h.BatchTypes.Delete)

		api.GET("/machines", h.Reports.Machines)
		api.GET("/reports/monthly", h.Reports.Monthly)
		api.POST("/reports/monthly/summary", h.Reports.StartSummary)
		api.GET("/summary", h.Reports.SummaryState)
		api.DELETE("/summary", h.Reports.CancelSummary)

		api.GET("/export/bill/:id", h.Exports.Bill)
		api.GET("/export/machines/:machine/csv", h.Exports.MachineCSV)
		api.GET("/export/machines/:machine/xlsx", h.Exports.MachineXLSX)
		api.GET("/export/reports/monthly/csv", h.Exports.MonthlyCSV)
		api.GET("/export/reports/monthly/xlsx", h.Exports.MonthlyXLSX)
		api.GET("/export/backup", h.Exports.Backup)
		api.POST("/restore", h.Exports.Restore)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	return cors.New(cfg)
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
