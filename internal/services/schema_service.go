package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

type SchemaService struct {
	projects  ProjectStore
	diagrams  DiagramStore
	graph     GraphStore
	cache     SchemaCache
	generator SchemaGenerator
}

func NewSchemaService(projects ProjectStore, diagrams DiagramStore, graph GraphStore, cache SchemaCache, generator SchemaGenerator) *SchemaService {
	return &SchemaService{
		projects:  projects,
		diagrams:  diagrams,
		graph:     graph,
		cache:     cache,
		generator: generator,
	}
}

type ApplySchemaRequest struct {
	SchemaCode string `json:"schemaCode" binding:"required"`
}

type ImportDiagramRequest struct {
	ProjectID   string `json:"projectId" binding:"required,uuid"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SchemaCode  string `json:"schemaCode" binding:"required"`
}

// GenerateSchema returns the schema text for the current graph of the
// diagram. Text is served from the cache when a graph with the same
// fingerprint was generated before; the diagram row keeps the last text.
func (s *SchemaService) GenerateSchema(ctx context.Context, diagramID string) (string, error) {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return "", err
	}
	d, err := loadDiagram(ctx, s.diagrams, s.graph, id)
	if err != nil {
		return "", err
	}
	if len(d.Entities) == 0 {
		return "", nil
	}

	fp, err := Fingerprint(d)
	if err != nil {
		return "", err
	}

	code, ok, err := s.cache.Get(ctx, fp)
	switch {
	case err != nil:
		schemaCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("schema cache lookup failed", "diagram_id", id, "error", err)
	case ok:
		schemaCacheLookups.WithLabelValues("hit").Inc()
	default:
		schemaCacheLookups.WithLabelValues("miss").Inc()
	}

	if !ok {
		code, err = s.generator.Generate(ctx, d)
		if err != nil {
			return "", fmt.Errorf("failed to generate schema: %w", err)
		}
		if err := s.cache.Set(ctx, fp, code); err != nil {
			slog.Warn("failed to cache schema", "diagram_id", id, "error", err)
		}
	}

	if code != d.MongoDBSchemaCode {
		if err := s.diagrams.SetSchemaCode(ctx, id, code); err != nil {
			slog.Warn("failed to store schema on diagram", "diagram_id", id, "error", err)
		}
	}
	return code, nil
}

// ApplySchema parses edited schema text and replaces the diagram's graph
// with the result in one transaction. The updated aggregate is returned.
func (s *SchemaService) ApplySchema(ctx context.Context, diagramID, schemaCode string) (*models.Diagram, error) {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(schemaCode) == "" {
		return nil, invalid("schema code is required")
	}

	d, err := s.diagrams.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get diagram: %w", err)
	}
	if d == nil {
		return nil, notFound("diagram")
	}

	parsed, err := s.generator.Parse(ctx, schemaCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	entities, rels, err := GraphFromParsed(parsed)
	if err != nil {
		return nil, err
	}

	if err := s.graph.Replace(ctx, id, entities, rels, schemaCode); err != nil {
		return nil, fmt.Errorf("failed to replace diagram graph: %w", err)
	}
	slog.Info("schema applied", "diagram_id", id, "entities", len(entities), "relationships", len(rels))
	return loadDiagram(ctx, s.diagrams, s.graph, id)
}

// ImportDiagram creates a diagram from schema text. The new diagram is
// removed again if the text cannot be applied.
func (s *SchemaService) ImportDiagram(ctx context.Context, req ImportDiagramRequest) (*models.Diagram, error) {
	projectID, err := parseID("project", req.ProjectID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("diagram name is required")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, notFound("project")
	}

	d := &models.Diagram{
		ProjectID:   projectID,
		Name:        name,
		Description: req.Description,
	}
	if err := s.diagrams.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to save diagram: %w", err)
	}

	imported, err := s.ApplySchema(ctx, d.ID.String(), req.SchemaCode)
	if err != nil {
		if delErr := s.diagrams.Delete(ctx, d.ID); delErr != nil {
			slog.Error("failed to roll back imported diagram", "diagram_id", d.ID, "error", delErr)
		}
		return nil, err
	}
	return imported, nil
}

// PreviewDiagram renders the graph of the diagram as Mermaid erDiagram text.
func (s *SchemaService) PreviewDiagram(ctx context.Context, diagramID string) (string, error) {
	id, err := parseID("diagram", diagramID)
	if err != nil {
		return "", err
	}
	d, err := loadDiagram(ctx, s.diagrams, s.graph, id)
	if err != nil {
		return "", err
	}
	return RenderMermaid(d), nil
}

// Fingerprint hashes the parts of the graph that affect the generated
// schema. Positions and styles are left out so canvas moves keep the cache.
func Fingerprint(d *models.Diagram) (string, error) {
	type fpEntity struct {
		ID         uuid.UUID          `json:"id"`
		Name       string             `json:"name"`
		Kind       diagram.EntityKind `json:"kind"`
		Attributes []models.Attribute `json:"attributes"`
	}
	type fpRelationship struct {
		Name     string                    `json:"name"`
		Type     diagram.RelationshipType  `json:"type"`
		Entities []diagram.Endpoint        `json:"entities"`
		OnDelete diagram.ReferentialAction `json:"onDelete"`
		OnUpdate diagram.ReferentialAction `json:"onUpdate"`
	}

	view := struct {
		Entities      []fpEntity       `json:"entities"`
		Relationships []fpRelationship `json:"relationships"`
	}{
		Entities:      make([]fpEntity, 0, len(d.Entities)),
		Relationships: make([]fpRelationship, 0, len(d.Relationships)),
	}
	for _, e := range d.Entities {
		view.Entities = append(view.Entities, fpEntity{ID: e.ID, Name: e.Name, Kind: e.Kind, Attributes: e.Attributes})
	}
	for _, r := range d.Relationships {
		view.Relationships = append(view.Relationships, fpRelationship{
			Name:     r.Name,
			Type:     r.Type,
			Entities: r.Entities,
			OnDelete: r.OnDelete,
			OnUpdate: r.OnUpdate,
		})
	}

	b, err := json.Marshal(view)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint diagram: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// GraphFromParsed assigns fresh ids to a parsed graph and resolves the
// relationship endpoints, which may name an entity by its local id or by
// its name. Entities without a position are laid out on a grid.
func GraphFromParsed(p *ParsedGraph) ([]models.Entity, []models.Relationship, error) {
	if p == nil {
		return nil, nil, errors.New("empty parse result")
	}

	refs := make(map[string]uuid.UUID, 2*len(p.Entities))
	positions := make(map[uuid.UUID]diagram.Position, len(p.Entities))
	entities := make([]models.Entity, 0, len(p.Entities))

	for i, pe := range p.Entities {
		name := strings.TrimSpace(pe.Name)
		if name == "" {
			return nil, nil, invalid("entity %d has no name", i+1)
		}
		if pe.Kind != "" && !validKind(pe.Kind) {
			return nil, nil, invalid("entity %q has unknown kind %q", name, pe.Kind)
		}

		id := uuid.New()
		if pe.ID != "" {
			refs[pe.ID] = id
		}
		if _, taken := refs[name]; !taken {
			refs[name] = id
		}

		pos := pe.Position
		if pos == (diagram.Position{}) {
			pos = gridPosition(i)
		}
		positions[id] = pos

		attrs := make([]models.Attribute, 0, len(pe.Attributes))
		for j, pa := range pe.Attributes {
			attrName := strings.TrimSpace(pa.Name)
			if attrName == "" {
				return nil, nil, invalid("attribute %d of entity %q has no name", j+1, name)
			}
			attrs = append(attrs, models.Attribute{
				Name:            attrName,
				DataType:        pa.DataType,
				IsPrimaryKey:    pa.IsPrimaryKey,
				IsForeignKey:    pa.IsForeignKey,
				IsUnique:        pa.IsUnique,
				IsNullable:      pa.IsNullable,
				IsAutoIncrement: pa.IsAutoIncrement,
				IsUnsigned:      pa.IsUnsigned,
				DefaultValue:    pa.DefaultValue,
				Comment:         pa.Comment,
			})
		}

		entities = append(entities, models.Entity{
			ID:         id,
			Name:       name,
			Kind:       pe.Kind,
			Attributes: attrs,
			Style:      pe.Style,
			Position:   pos,
		})
	}

	rels := make([]models.Relationship, 0, len(p.Relationships))
	for i, pr := range p.Relationships {
		relName := strings.TrimSpace(pr.Name)
		if relName == "" {
			return nil, nil, invalid("relationship %d has no name", i+1)
		}
		if len(pr.Entities) != 2 {
			return nil, nil, invalid("relationship %q needs exactly two entities", pr.Name)
		}
		eps := make([]diagram.Endpoint, 2)
		for i, ep := range pr.Entities {
			id, ok := refs[ep.EntityID]
			if !ok {
				return nil, nil, invalid("relationship %q references unknown entity %q", pr.Name, ep.EntityID)
			}
			if !validCardinality(ep.Cardinality) {
				return nil, nil, invalid("relationship %q has invalid cardinality %q", pr.Name, ep.Cardinality)
			}
			if !validParticipation(ep.Participation) {
				return nil, nil, invalid("relationship %q has invalid participation %q", pr.Name, ep.Participation)
			}
			ep.EntityID = id.String()
			eps[i] = ep
		}
		if eps[0].EntityID == eps[1].EntityID {
			return nil, nil, invalid("relationship %q connects an entity to itself", pr.Name)
		}
		if err := checkActions(pr.OnDelete, pr.OnUpdate); err != nil {
			return nil, nil, err
		}

		src, _ := uuid.Parse(eps[0].EntityID)
		dst, _ := uuid.Parse(eps[1].EntityID)
		rels = append(rels, models.Relationship{
			Name:     relName,
			Entities: eps,
			OnDelete: pr.OnDelete,
			OnUpdate: pr.OnUpdate,
			Style:    pr.Style,
			Position: diagram.Midpoint(positions[src], positions[dst]),
		})
	}
	return entities, rels, nil
}

const (
	gridColumns  = 4
	gridSpacingX = 280
	gridSpacingY = 220
)

func gridPosition(i int) diagram.Position {
	return diagram.Position{
		X: float64(i%gridColumns) * gridSpacingX,
		Y: float64(i/gridColumns) * gridSpacingY,
	}
}
