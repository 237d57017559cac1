package routes

import (
	"github.com/gin-gonic/gin"

	"erdiagram/internal/handlers"
)

type EntityRoutes struct {
	handler *handlers.EntityHandler
}

func NewEntityRoutes(handler *handlers.EntityHandler) *EntityRoutes {
	return &EntityRoutes{handler: handler}
}

func (r *EntityRoutes) RegisterRoutes(router *gin.RouterGroup) {
	entities := router.Group("/entities")
	{
		entities.POST("", r.handler.CreateEntity)
		entities.GET("/:id", r.handler.GetEntity)
		entities.PATCH("/:id", r.handler.UpdateEntity)
		entities.DELETE("/:id", r.handler.DeleteEntity)
	}
}

type AttributeRoutes struct {
	handler *handlers.AttributeHandler
}

func NewAttributeRoutes(handler *handlers.AttributeHandler) *AttributeRoutes {
	return &AttributeRoutes{handler: handler}
}

func (r *AttributeRoutes) RegisterRoutes(router *gin.RouterGroup) {
	attributes := router.Group("/attributes")
	{
		attributes.POST("", r.handler.CreateAttribute)
		attributes.PATCH("/:id", r.handler.UpdateAttribute)
		attributes.DELETE("/:id", r.handler.DeleteAttribute)
	}
}

type RelationshipRoutes struct {
	handler *handlers.RelationshipHandler
}

func NewRelationshipRoutes(handler *handlers.RelationshipHandler) *RelationshipRoutes {
	return &RelationshipRoutes{handler: handler}
}

func (r *RelationshipRoutes) RegisterRoutes(router *gin.RouterGroup) {
	relationships := router.Group("/relationships")
	{
		relationships.POST("", r.handler.CreateRelationship)
		relationships.GET("/:id", r.handler.GetRelationship)
		relationships.PATCH("/:id", r.handler.UpdateRelationship)
		relationships.DELETE("/:id", r.handler.DeleteRelationship)
	}
}
