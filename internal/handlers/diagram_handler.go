package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type DiagramService interface {
	CreateDiagram(ctx context.Context, req services.CreateDiagramRequest) (*models.Diagram, error)
	GetDiagram(ctx context.Context, diagramID string) (*models.Diagram, error)
	UpdateDiagram(ctx context.Context, diagramID string, req services.UpdateDiagramRequest) (*models.Diagram, error)
	UpdateLayout(ctx context.Context, diagramID string, layout diagram.Layout) error
	DeleteDiagram(ctx context.Context, diagramID string) error
}

type DiagramHandler struct {
	diagramService DiagramService
}

func NewDiagramHandler(diagramService DiagramService) *DiagramHandler {
	return &DiagramHandler{
		diagramService: diagramService,
	}
}

// CreateDiagram handles POST /api/v1/diagrams
func (h *DiagramHandler) CreateDiagram(c *gin.Context) {
	var req services.CreateDiagramRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.diagramService.CreateDiagram(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create diagram")
		return
	}

	responses.Success(c, http.StatusCreated, d, "Diagram created successfully")
}

// GetDiagram handles GET /api/v1/diagrams/:id and returns the full graph.
func (h *DiagramHandler) GetDiagram(c *gin.Context) {
	d, err := h.diagramService.GetDiagram(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to get diagram")
		return
	}

	responses.Success(c, http.StatusOK, d, "Diagram retrieved successfully")
}

// UpdateDiagram handles PATCH /api/v1/diagrams/:id
func (h *DiagramHandler) UpdateDiagram(c *gin.Context) {
	var req services.UpdateDiagramRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.diagramService.UpdateDiagram(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		fail(c, err, "Failed to update diagram")
		return
	}

	responses.Success(c, http.StatusOK, d, "Diagram updated successfully")
}

// UpdateLayout handles PUT /api/v1/diagrams/:id/layout
func (h *DiagramHandler) UpdateLayout(c *gin.Context) {
	var layout diagram.Layout
	if !bindJSON(c, &layout) {
		return
	}

	if err := h.diagramService.UpdateLayout(c.Request.Context(), c.Param("id"), layout); err != nil {
		fail(c, err, "Failed to update layout")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Layout saved successfully")
}

// DeleteDiagram handles DELETE /api/v1/diagrams/:id
func (h *DiagramHandler) DeleteDiagram(c *gin.Context) {
	if err := h.diagramService.DeleteDiagram(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err, "Failed to delete diagram")
		return
	}

	responses.Success(c, http.StatusOK, nil, "Diagram deleted successfully")
}
