package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdiagram/internal/models"
	"erdiagram/internal/responses"
	"erdiagram/internal/services"
)

type SchemaService interface {
	GenerateSchema(ctx context.Context, diagramID string) (string, error)
	ApplySchema(ctx context.Context, diagramID, schemaCode string) (*models.Diagram, error)
	ImportDiagram(ctx context.Context, req services.ImportDiagramRequest) (*models.Diagram, error)
	PreviewDiagram(ctx context.Context, diagramID string) (string, error)
}

type SchemaHandler struct {
	schemaService SchemaService
}

func NewSchemaHandler(schemaService SchemaService) *SchemaHandler {
	return &SchemaHandler{
		schemaService: schemaService,
	}
}

type SchemaResponse struct {
	SchemaCode string `json:"schemaCode"`
}

type PreviewResponse struct {
	Mermaid string `json:"mermaid"`
}

// GenerateSchema handles GET /api/v1/diagrams/:id/schema
func (h *SchemaHandler) GenerateSchema(c *gin.Context) {
	code, err := h.schemaService.GenerateSchema(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to generate schema")
		return
	}

	responses.Success(c, http.StatusOK, SchemaResponse{SchemaCode: code}, "Schema generated successfully")
}

// ApplySchema handles PUT /api/v1/diagrams/:id/schema
func (h *SchemaHandler) ApplySchema(c *gin.Context) {
	var req services.ApplySchemaRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.schemaService.ApplySchema(c.Request.Context(), c.Param("id"), req.SchemaCode)
	if err != nil {
		fail(c, err, "Failed to apply schema")
		return
	}

	responses.Success(c, http.StatusOK, d, "Schema applied successfully")
}

// ImportDiagram handles POST /api/v1/diagrams/import
func (h *SchemaHandler) ImportDiagram(c *gin.Context) {
	var req services.ImportDiagramRequest
	if !bindJSON(c, &req) {
		return
	}

	d, err := h.schemaService.ImportDiagram(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to import diagram")
		return
	}

	responses.Success(c, http.StatusCreated, d, "Diagram imported successfully")
}

// PreviewDiagram handles GET /api/v1/diagrams/:id/preview
func (h *SchemaHandler) PreviewDiagram(c *gin.Context) {
	out, err := h.schemaService.PreviewDiagram(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "Failed to render preview")
		return
	}

	responses.Success(c, http.StatusOK, PreviewResponse{Mermaid: out}, "Preview rendered successfully")
}
