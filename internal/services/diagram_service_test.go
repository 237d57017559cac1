package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdiagram/internal/diagram"
)

func TestDiagramService_CreateDiagram(t *testing.T) {
	f := newFixture()
	svc := NewDiagramService(f.projects, f.diagrams, f.graph)
	ctx := context.Background()

	d, err := svc.CreateDiagram(ctx, CreateDiagramRequest{ProjectID: f.project.ID.String(), Name: "inventory"})
	require.NoError(t, err)
	assert.Equal(t, 1, d.Version)
	assert.Empty(t, d.Entities)
	assert.NotNil(t, d.Relationships)

	_, err = svc.CreateDiagram(ctx, CreateDiagramRequest{ProjectID: uuid.NewString(), Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiagramService_GetDiagram(t *testing.T) {
	f := newFixture()
	svc := NewDiagramService(f.projects, f.diagrams, f.graph)

	d, err := svc.GetDiagram(context.Background(), f.diagram.ID.String())
	require.NoError(t, err)
	require.Len(t, d.Entities, 2)
	assert.Equal(t, "User", d.Entities[0].Name)
	require.Len(t, d.Entities[0].Attributes, 1)
	require.Len(t, d.Relationships, 1)
	assert.Equal(t, diagram.OneToMany, d.Relationships[0].Type)
	assert.Equal(t, "cached", d.MongoDBSchemaCode)

	_, err = svc.GetDiagram(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiagramService_UpdateDiagram(t *testing.T) {
	f := newFixture()
	svc := NewDiagramService(f.projects, f.diagrams, f.graph)
	ctx := context.Background()
	id := f.diagram.ID.String()

	two := 2
	public := true
	d, err := svc.UpdateDiagram(ctx, id, UpdateDiagramRequest{Version: &two, IsPublic: &public})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Version)
	assert.True(t, d.IsPublic)
	assert.Equal(t, "orders", d.Name)
	assert.Len(t, d.Entities, 2, "response carries the graph")

	zero := 0
	_, err = svc.UpdateDiagram(ctx, id, UpdateDiagramRequest{Version: &zero})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateDiagram(ctx, id, UpdateDiagramRequest{Name: strPtr(" ")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDiagramService_UpdateLayout(t *testing.T) {
	f := newFixture()
	svc := NewDiagramService(f.projects, f.diagrams, f.graph)
	ctx := context.Background()

	layout := diagram.Layout{Viewport: &diagram.Viewport{Zoom: 1.5}}
	require.NoError(t, svc.UpdateLayout(ctx, f.diagram.ID.String(), layout))
	stored := f.db.diagrams[f.diagram.ID].Layout
	require.NotNil(t, stored)
	assert.NotNil(t, stored.Nodes)
	assert.Equal(t, 1.5, stored.Viewport.Zoom)

	err := svc.UpdateLayout(ctx, f.diagram.ID.String(), diagram.Layout{Viewport: &diagram.Viewport{}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, svc.UpdateLayout(ctx, uuid.NewString(), layout), ErrNotFound)
}

func TestDiagramService_DeleteDiagram(t *testing.T) {
	f := newFixture()
	svc := NewDiagramService(f.projects, f.diagrams, f.graph)
	ctx := context.Background()

	require.NoError(t, svc.DeleteDiagram(ctx, f.diagram.ID.String()))
	assert.Empty(t, f.db.entities)
	assert.Empty(t, f.db.relationships)
	assert.ErrorIs(t, svc.DeleteDiagram(ctx, f.diagram.ID.String()), ErrNotFound)
}
