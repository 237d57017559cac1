package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type RelationshipService interface {
	CreateRelationship(ctx context.Context, req services.CreateRelationshipRequest) (*models.Relationship, error)
	GetRelationship(ctx context.Context, relationshipID string) (*models.Relationship, error)
	UpdateRelationship(ctx context.Context, relationshipID string, req services.UpdateRelationshipRequest) (*models.Relationship, error)
	DeleteRelationship(ctx context.Context, relationshipID string) error
}

type RelationshipHandler struct {
	relationshipService RelationshipService
}

func NewRelationshipHandler(relationshipService RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{relationshipService: relationshipService}
}

// CreateRelationship handles POST /api/v1/relationships
func (h *RelationshipHandler) CreateRelationship(c *gin.Context) {
	var req services.CreateRelationshipRequest
	if !bindJSON(c, &req) {
		return
	}

	rel, err := h.relationshipService.CreateRelationship(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create relationship")
		return
	}

	responses.Success(c, http.StatusCreated, rel, "Relationship created successfully")
}

// GetRelationship handles GET /api/v1/relationships/:id
func (h *RelationshipHandler) GetRelationship(c *gin.Context) {
	rel, err := h.relationshipService.GetRelationship(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to get relationship")
		return
	}

	responses.Success(c, http.StatusOK, rel, "Relationship retrieved successfully")
}

// UpdateRelationship handles PATCH /api/v1/relationships/:id
func (h *RelationshipHandler) UpdateRelationship(c *gin.Context) {
	var req services.UpdateRelationshipRequest
	if !bindJSON(c, &req) {
		return
	}

	rel, err := h.relationshipService.UpdateRelationship(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, "Failed to update relationship")
		return
	}

	responses.Success(c, http.StatusOK, rel, "Relationship updated successfully")
}

// DeleteRelationship handles DELETE /api/v1/relationships/:id
func (h *RelationshipHandler) DeleteRelationship(c *gin.Context) {
	if err := h.relationshipService.DeleteRelationship(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Failed to delete relationship")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Relationship deleted successfully")
}
