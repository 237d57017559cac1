package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"erdiagram/internal/handlers"
	"erdiagram/internal/middlewares"
)

type Handlers struct {
	Project      *handlers.ProjectHandler
	Diagram      *handlers.DiagramHandler
	Schema       *handlers.SchemaHandler
	Entity       *handlers.EntityHandler
	Attribute    *handlers.AttributeHandler
	Relationship *handlers.RelationshipHandler
}

// RegisterRoutes mounts the diagram API under /api/v1. A non-empty apiToken
// or jwtSecret protects the API group; health and metrics stay open.
func RegisterRoutes(router *gin.Engine, h Handlers, apiToken string, jwtSecret []byte) {
	api := router.Group("/api/v1")
	if apiToken != "" || len(jwtSecret) > 0 {
		api.Use(middlewares.Authenticate(apiToken, jwtSecret))
	}

	NewProjectRoutes(h.Project).RegisterRoutes(api)
	NewDiagramRoutes(h.Diagram, h.Schema).RegisterRoutes(api)
	NewEntityRoutes(h.Entity).RegisterRoutes(api)
	NewAttributeRoutes(h.Attribute).RegisterRoutes(api)
	NewRelationshipRoutes(h.Relationship).RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
