package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type AttributeService interface {
	CreateAttribute(ctx context.Context, req services.AttributeRequest) (*models.Attribute, error)
	UpdateAttribute(ctx context.Context, attributeID string, req services.AttributeRequest) (*models.Attribute, error)
	DeleteAttribute(ctx context.Context, attributeID string) error
}

type AttributeHandler struct {
	attributeService AttributeService
}

func NewAttributeHandler(attributeService AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

// CreateAttribute handles POST /api/v1/attributes
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	var req services.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.attributeService.CreateAttribute(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create attribute")
		return
	}

	responses.Success(c, http.StatusCreated, a, "Attribute created successfully")
}

// UpdateAttribute handles PATCH /api/v1/attributes/:id
func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	var req services.AttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.attributeService.UpdateAttribute(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, "Failed to update attribute")
		return
	}

	responses.Success(c, http.StatusOK, a, "Attribute updated successfully")
}

// DeleteAttribute handles DELETE /api/v1/attributes/:id
func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	if err := h.attributeService.DeleteAttribute(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Failed to delete attribute")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Attribute deleted successfully")
}
