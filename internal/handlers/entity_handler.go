package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type EntityService interface {
	CreateEntity(ctx context.Context, req services.CreateEntityRequest) (*models.Entity, error)
	GetEntity(ctx context.Context, entityID string) (*models.Entity, error)
	UpdateEntity(ctx context.Context, entityID string, req services.UpdateEntityRequest) (*models.Entity, error)
	DeleteEntity(ctx context.Context, entityID string) error
}

type EntityHandler struct {
	entityService EntityService
}

func NewEntityHandler(entityService EntityService) *EntityHandler {
	return &EntityHandler{entityService: entityService}
}

// CreateEntity handles POST /api/v1/entities
func (h *EntityHandler) CreateEntity(c *gin.Context) {
	var req services.CreateEntityRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.entityService.CreateEntity(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create entity")
		return
	}

	responses.Success(c, http.StatusCreated, e, "Entity created successfully")
}

// GetEntity handles GET /api/v1/entities/:id
func (h *EntityHandler) GetEntity(c *gin.Context) {
	e, err := h.entityService.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to get entity")
		return
	}

	responses.Success(c, http.StatusOK, e, "Entity retrieved successfully")
}

// UpdateEntity handles PATCH /api/v1/entities/:id
func (h *EntityHandler) UpdateEntity(c *gin.Context) {
	var req services.UpdateEntityRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.entityService.UpdateEntity(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, "Failed to update entity")
		return
	}

	responses.Success(c, http.StatusOK, e, "Entity updated successfully")
}

// DeleteEntity handles DELETE /api/v1/entities/:id
func (h *EntityHandler) DeleteEntity(c *gin.Context) {
	if err := h.entityService.DeleteEntity(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Failed to delete entity")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Entity deleted successfully")
}
