package api_gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ohada-ledger/internal/api_gateway/handler"
	"github.com/ohada-ledger/internal/api_gateway/middleware"
)

// Handlers groups the HTTP handlers mounted by the router
type Handlers struct {
	Accounts *handler.AccountHandler
	Classes  *handler.ClassHandler
	Journal  *handler.JournalHandler
	Reports  *handler.ReportHandler
	Archive  *handler.ArchiveHandler
	Probes   map[string]Probe
}

// Probe reports whether a dependency is reachable
type Probe func(ctx context.Context) error

const probeTimeout = 2 * time.Second

// setupRouter configures API routes and middleware for the application.
// The correlation id middleware runs before the logger so request logs carry it.
func setupRouter(logger *slog.Logger, r *gin.Engine, h Handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		classes := v1.Group("/classes")
		{
			classes.GET("", h.Classes.List)
			classes.GET("/:number", h.Classes.Get)
		}

		// Account routes accept a code or an id
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", h.Accounts.Create)
			accounts.GET("", h.Accounts.List)
			accounts.GET("/:id", h.Accounts.Get)
			accounts.PATCH("/:id", h.Accounts.Update)
			accounts.DELETE("/:id", h.Accounts.Delete)
			accounts.GET("/:id/balance", h.Accounts.Balance)
			accounts.GET("/:id/lines", h.Accounts.Lines)
		}

		// Entry routes accept an id or a reference
		entries := v1.Group("/journal")
		{
			entries.POST("", h.Journal.Create)
			entries.POST("/submissions", h.Journal.Submit)
			entries.GET("", h.Journal.List)
			entries.GET("/:id", h.Journal.Get)
			entries.PATCH("/:id", h.Journal.Update)
			entries.POST("/:id/post", h.Journal.Post)
			entries.DELETE("/:id", h.Journal.Delete)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/trial-balance", h.Reports.TrialBalance)
			reports.GET("/unbalanced-entries", h.Reports.UnbalancedEntries)
		}

		if h.Archive != nil {
			archive := v1.Group("/archive")
			{
				archive.GET("/entries/:reference", h.Archive.GetByReference)
				archive.GET("/accounts/:code/entries", h.Archive.GetByAccount)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		handler.RespondNotFound(c, "")
	})

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})

	r.GET("/ready", readiness(logger, h.Probes))
}

// readiness runs every probe and answers 503 naming the failing dependencies.
func readiness(logger *slog.Logger, probes map[string]Probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		status := http.StatusOK
		for name, probe := range probes {
			if err := probe(ctx); err != nil {
				logger.Warn("Readiness probe failed", "dependency", name, "error", err)
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
