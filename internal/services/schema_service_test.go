package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

func newSchemaService(f *fixture, cache *fakeCache, gen *fakeGenerator) *SchemaService {
	return NewSchemaService(f.projects, f.diagrams, f.graph, cache, gen)
}

func TestSchemaService_GenerateSchema_Caches(t *testing.T) {
	f := newFixture()
	cache := newFakeCache()
	gen := &fakeGenerator{code: "const UserSchema = new Schema({})"}
	svc := newSchemaService(f, cache, gen)
	ctx := context.Background()

	code, err := svc.GenerateSchema(ctx, f.diagram.ID.String())
	require.NoError(t, err)
	assert.Equal(t, gen.code, code)
	assert.Equal(t, 1, gen.generated)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, gen.code, f.schemaCode(), "diagram row keeps the last text")

	code, err = svc.GenerateSchema(ctx, f.diagram.ID.String())
	require.NoError(t, err)
	assert.Equal(t, gen.code, code)
	assert.Equal(t, 1, gen.generated, "second call is served from the cache")

	moved := f.db.entities[f.order.ID]
	moved.Position = diagram.Position{X: 999, Y: 999}
	f.db.entities[f.order.ID] = moved
	_, err = svc.GenerateSchema(ctx, f.diagram.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, gen.generated, "positions do not change the fingerprint")

	renamed := f.db.entities[f.order.ID]
	renamed.Name = "Purchase"
	f.db.entities[f.order.ID] = renamed
	_, err = svc.GenerateSchema(ctx, f.diagram.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, gen.generated)
}

func TestSchemaService_GenerateSchema_CacheDown(t *testing.T) {
	f := newFixture()
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")
	gen := &fakeGenerator{code: "code"}
	svc := newSchemaService(f, cache, gen)

	code, err := svc.GenerateSchema(context.Background(), f.diagram.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "code", code)
	assert.Equal(t, 1, gen.generated)
}

func TestSchemaService_GenerateSchema_Errors(t *testing.T) {
	f := newFixture()
	gen := &fakeGenerator{err: ErrGenerator}
	svc := newSchemaService(f, newFakeCache(), gen)
	ctx := context.Background()

	_, err := svc.GenerateSchema(ctx, f.diagram.ID.String())
	assert.ErrorIs(t, err, ErrGenerator)
	assert.Equal(t, "cached", f.schemaCode())

	_, err = svc.GenerateSchema(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSchemaService_GenerateSchema_EmptyDiagram(t *testing.T) {
	f := newFixture()
	gen := &fakeGenerator{code: "code"}
	svc := newSchemaService(f, newFakeCache(), gen)

	empty := models.Diagram{ProjectID: f.project.ID, Name: "empty"}
	require.NoError(t, f.diagrams.Create(context.Background(), &empty))

	code, err := svc.GenerateSchema(context.Background(), empty.ID.String())
	require.NoError(t, err)
	assert.Empty(t, code)
	assert.Zero(t, gen.generated)
}

func parsedShop() *ParsedGraph {
	return &ParsedGraph{
		Entities: []diagram.Entity{
			{ID: "p", Name: "Product", Attributes: []diagram.Attribute{{Name: "sku", IsPrimaryKey: true}}},
			{Name: "Category", Position: diagram.Position{X: 400, Y: 300}},
		},
		Relationships: []diagram.Relationship{{
			Name: "in",
			Entities: []diagram.Endpoint{
				{EntityID: "p", Cardinality: diagram.CardinalityMany},
				{EntityID: "Category", Cardinality: diagram.CardinalityOne},
			},
		}},
	}
}

func TestSchemaService_ApplySchema(t *testing.T) {
	f := newFixture()
	gen := &fakeGenerator{parsed: parsedShop()}
	svc := newSchemaService(f, newFakeCache(), gen)

	d, err := svc.ApplySchema(context.Background(), f.diagram.ID.String(), "edited")
	require.NoError(t, err)
	assert.Equal(t, []string{"edited"}, gen.parsedIn)

	require.Len(t, d.Entities, 2)
	product, category := d.Entities[0], d.Entities[1]
	assert.Equal(t, "Product", product.Name)
	assert.Equal(t, diagram.Position{}, product.Position, "first grid cell")
	assert.Equal(t, diagram.Position{X: 400, Y: 300}, category.Position)
	require.Len(t, product.Attributes, 1)
	assert.True(t, product.Attributes[0].IsUnique)
	assert.False(t, product.Attributes[0].IsNullable)

	require.Len(t, d.Relationships, 1)
	rel := d.Relationships[0]
	assert.Equal(t, product.ID.String(), rel.Entities[0].EntityID)
	assert.Equal(t, category.ID.String(), rel.Entities[1].EntityID)
	assert.Equal(t, diagram.OneToMany, rel.Type)
	assert.Equal(t, diagram.Position{X: 200, Y: 150}, rel.Position)
	assert.Equal(t, "edited", d.MongoDBSchemaCode)

	assert.NotContains(t, f.db.entities, f.user.ID, "previous graph is replaced")
}

func TestSchemaService_ApplySchema_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		parsed  func() *ParsedGraph
		genErr  error
		wantErr error
	}{
		{name: "blank code", code: "  ", parsed: parsedShop, wantErr: ErrInvalidInput},
		{
			name: "unknown endpoint",
			code: "x",
			parsed: func() *ParsedGraph {
				p := parsedShop()
				p.Relationships[0].Entities[1].EntityID = "Tag"
				return p
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "self relationship",
			code: "x",
			parsed: func() *ParsedGraph {
				p := parsedShop()
				p.Relationships[0].Entities[1].EntityID = "Product"
				return p
			},
			wantErr: ErrInvalidInput,
		},
		{name: "parse rejected", code: "x", parsed: parsedShop, genErr: invalid("line 1: unexpected token"), wantErr: ErrInvalidInput},
		{name: "generator down", code: "x", parsed: parsedShop, genErr: ErrGenerator, wantErr: ErrGenerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := newSchemaService(f, newFakeCache(), &fakeGenerator{parsed: tt.parsed(), err: tt.genErr})

			_, err := svc.ApplySchema(context.Background(), f.diagram.ID.String(), tt.code)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, f.db.entities, f.user.ID, "graph is untouched")
			assert.Equal(t, "cached", f.schemaCode())
		})
	}
}

func TestSchemaService_ImportDiagram(t *testing.T) {
	ctx := context.Background()

	t.Run("creates diagram from text", func(t *testing.T) {
		f := newFixture()
		svc := newSchemaService(f, newFakeCache(), &fakeGenerator{parsed: parsedShop()})

		d, err := svc.ImportDiagram(ctx, ImportDiagramRequest{ProjectID: f.project.ID.String(), Name: "catalog", SchemaCode: "text"})
		require.NoError(t, err)
		assert.Equal(t, "catalog", d.Name)
		assert.Len(t, d.Entities, 2)
		assert.Len(t, f.db.diagrams, 2)
	})

	t.Run("rolls back on apply failure", func(t *testing.T) {
		f := newFixture()
		f.db.replaceErr = errors.New("tx aborted")
		svc := newSchemaService(f, newFakeCache(), &fakeGenerator{parsed: parsedShop()})

		_, err := svc.ImportDiagram(ctx, ImportDiagramRequest{ProjectID: f.project.ID.String(), Name: "catalog", SchemaCode: "text"})
		require.Error(t, err)
		assert.Len(t, f.db.diagrams, 1, "half-imported diagram is removed")
	})

	t.Run("unknown project", func(t *testing.T) {
		f := newFixture()
		svc := newSchemaService(f, newFakeCache(), &fakeGenerator{parsed: parsedShop()})

		_, err := svc.ImportDiagram(ctx, ImportDiagramRequest{ProjectID: uuid.NewString(), Name: "catalog", SchemaCode: "text"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSchemaService_PreviewDiagram(t *testing.T) {
	f := newFixture()
	svc := newSchemaService(f, newFakeCache(), &fakeGenerator{})

	out, err := svc.PreviewDiagram(context.Background(), f.diagram.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "erDiagram\n")
	assert.Contains(t, out, `USER ||..o{ ORDER : "owns"`)
}

func TestGraphFromParsed_GridLayout(t *testing.T) {
	p := &ParsedGraph{}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		p.Entities = append(p.Entities, diagram.Entity{Name: name})
	}

	entities, rels, err := GraphFromParsed(p)
	require.NoError(t, err)
	assert.Empty(t, rels)
	require.Len(t, entities, 5)
	assert.Equal(t, diagram.Position{X: 3 * gridSpacingX, Y: 0}, entities[3].Position)
	assert.Equal(t, diagram.Position{X: 0, Y: gridSpacingY}, entities[4].Position)
}

func TestGraphFromParsed_Rejects(t *testing.T) {
	rel := func(mutate func(r *diagram.Relationship)) *ParsedGraph {
		r := diagram.Relationship{
			Name: "owns",
			Entities: []diagram.Endpoint{
				{EntityID: "User", Cardinality: diagram.CardinalityOne, Participation: diagram.ParticipationPartial},
				{EntityID: "Order", Cardinality: diagram.CardinalityMany, Participation: diagram.ParticipationTotal},
			},
			OnDelete: diagram.ActionCascade,
		}
		mutate(&r)
		return &ParsedGraph{
			Entities:      []diagram.Entity{{Name: "User"}, {Name: "Order"}},
			Relationships: []diagram.Relationship{r},
		}
	}

	tests := []struct {
		name   string
		parsed *ParsedGraph
	}{
		{
			name:   "blank entity name",
			parsed: &ParsedGraph{Entities: []diagram.Entity{{Name: "  "}}},
		},
		{
			name: "blank attribute name",
			parsed: &ParsedGraph{Entities: []diagram.Entity{{
				Name:       "User",
				Attributes: []diagram.Attribute{{Name: "   ", DataType: diagram.TypeString}},
			}}},
		},
		{
			name:   "blank relationship name",
			parsed: rel(func(r *diagram.Relationship) { r.Name = "  " }),
		},
		{
			name:   "unknown participation",
			parsed: rel(func(r *diagram.Relationship) { r.Entities[0].Participation = "bogus" }),
		},
		{
			name:   "unknown on delete action",
			parsed: rel(func(r *diagram.Relationship) { r.OnDelete = "EXPLODE" }),
		},
		{
			name:   "unknown on update action",
			parsed: rel(func(r *diagram.Relationship) { r.OnUpdate = "sometimes" }),
		},
		{
			name:   "unknown cardinality",
			parsed: rel(func(r *diagram.Relationship) { r.Entities[1].Cardinality = "many" }),
		},
		{
			name:   "self relationship",
			parsed: rel(func(r *diagram.Relationship) { r.Entities[1].EntityID = "User" }),
		},
		{
			name:   "unknown entity",
			parsed: rel(func(r *diagram.Relationship) { r.Entities[1].EntityID = "Invoice" }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := GraphFromParsed(tt.parsed)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	t.Run("valid graph passes", func(t *testing.T) {
		entities, rels, err := GraphFromParsed(rel(func(*diagram.Relationship) {}))
		require.NoError(t, err)
		require.Len(t, entities, 2)
		require.Len(t, rels, 1)
		assert.Equal(t, diagram.ActionCascade, rels[0].OnDelete)
	})
}
