package routes

import (
	"github.com/gin-gonic/gin"

	"erdiagram/internal/handlers"
)

// DiagramRoutes serves diagram settings and layout together with the
// schema endpoints nested under a diagram.
type DiagramRoutes struct {
	handler       *handlers.DiagramHandler
	schemaHandler *handlers.SchemaHandler
}

func NewDiagramRoutes(handler *handlers.DiagramHandler, schemaHandler *handlers.SchemaHandler) *DiagramRoutes {
	return &DiagramRoutes{handler: handler, schemaHandler: schemaHandler}
}

func (r *DiagramRoutes) RegisterRoutes(router *gin.RouterGroup) {
	diagrams := router.Group("/diagrams")
	{
		diagrams.POST("", r.handler.CreateDiagram)
		diagrams.POST("/import", r.schemaHandler.ImportDiagram)
		diagrams.GET("/:id", r.handler.GetDiagram)
		diagrams.PATCH("/:id", r.handler.UpdateDiagram)
		diagrams.PUT("/:id/layout", r.handler.UpdateLayout)
		diagrams.DELETE("/:id", r.handler.DeleteDiagram)

		diagrams.GET("/:id/schema", r.schemaHandler.GenerateSchema)
		diagrams.PUT("/:id/schema", r.schemaHandler.ApplySchema)
		diagrams.GET("/:id/preview", r.schemaHandler.PreviewDiagram)
	}
}
