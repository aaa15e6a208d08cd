// Package http wires the gin router serving the dashboard and management
// API.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillscope/internal/interfaces/http/handlers"
	"skillscope/internal/shared/config"
	"skillscope/internal/shared/logger"
)

type Router struct {
	engine    *gin.Engine
	queue     *handlers.QueueHandler
	taxonomy  *handlers.TaxonomyHandler
	reporting *handlers.ReportingHandler
	logger    logger.Interface
}

func NewRouter(
	serverCfg config.ServerConfig,
	queueHandler *handlers.QueueHandler,
	taxonomyHandler *handlers.TaxonomyHandler,
	reportingHandler *handlers.ReportingHandler,
	log logger.Interface,
) *Router {
	gin.SetMode(mapEnvToGinMode(serverCfg.Mode))

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log))

	r := &Router{
		engine:    engine,
		queue:     queueHandler,
		taxonomy:  taxonomyHandler,
		reporting: reportingHandler,
		logger:    log,
	}
	r.registerRoutes()
	return r
}

func (r *Router) Handler() http.Handler { return r.engine }

// mapEnvToGinMode translates an environment name into a gin mode so the
// config can carry "production"/"development" without knowing gin's
// vocabulary. Unknown values fall back to debug.
func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (r *Router) registerRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	queue := api.Group("/queue")
	{
		queue.GET("/status", r.queue.GetStatus)
		queue.GET("/claims", r.queue.GetActiveClaims)
		queue.POST("/requeue-errors", r.queue.RequeueErrors)
		queue.POST("/reset-stuck", r.queue.ResetStuck)
	}

	taxonomy := api.Group("/taxonomy")
	{
		taxonomy.GET("/counts", r.taxonomy.GetCounts)
		taxonomy.POST("/associate", r.taxonomy.AssociateDiscovered)

		managed := taxonomy.Group("/managed")
		{
			managed.GET("", r.taxonomy.ListManaged)
			managed.POST("", r.taxonomy.CreateManaged)
			managed.PUT("/:id", r.taxonomy.UpdateManaged)
			managed.DELETE("/:id", r.taxonomy.DeleteManaged)
			managed.POST("/merge", r.taxonomy.MergeManaged)
			managed.POST("/associate", r.taxonomy.AssociateManaged)
		}

		distilled := taxonomy.Group("/distilled")
		{
			distilled.GET("", r.taxonomy.ListDistilled)
			distilled.POST("", r.taxonomy.CreateDistilled)
			distilled.PUT("/:id", r.taxonomy.UpdateDistilled)
			distilled.DELETE("/:id", r.taxonomy.DeleteDistilled)
			distilled.POST("/merge", r.taxonomy.MergeDistilled)
		}
	}

	reports := api.Group("/reports")
	{
		reports.GET("/skills/top", r.reporting.TopDiscoveredSkills)
		reports.GET("/skills/unassociated", r.reporting.TopUnassociatedSkills)
		reports.GET("/skills/managed-occurrences", r.reporting.ManagedSkillOccurrences)
		reports.GET("/technicians", r.reporting.ListTechnicians)
		reports.GET("/technicians/:id/skills", r.reporting.ManagedSkillsByTechnician)
		reports.GET("/skills/technicians", r.reporting.TechniciansByManagedSkill)
		reports.GET("/throughput", r.reporting.Throughput)
	}
}

func requestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Errorw("request failed",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"status", c.Writer.Status())
		}
	}
}
