// Package router registers the placement engine's HTTP routes, grounded on
// the teacher's internal/http/router/router.go SetupRoutes shape.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langtest/catengine/internal/http/handler"
	"github.com/langtest/catengine/internal/service"
)

// Config carries router-level settings (currently just the API prefix; kept
// as a struct rather than a bare string so future flags — e.g. an admin API
// key — don't force a signature change, mirroring the teacher's RouterConfig).
type Config struct {
	APIV1Prefix string
}

// SetupRoutes registers /health and the placement API under cfg.APIV1Prefix.
func SetupRoutes(r *gin.Engine, orchestrator *service.Orchestrator, cfg Config) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	placementHandler := handler.NewPlacementHandler(orchestrator)

	v1 := r.Group(cfg.APIV1Prefix)
	{
		placement := v1.Group("/placement")
		placement.POST("/:assigned_id/start", placementHandler.Start)
		placement.POST("/:session_id/answer", placementHandler.SubmitAnswer)
	}
}
