package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

func endpoints(a, b uuid.UUID, ca, cb diagram.Cardinality) []diagram.Endpoint {
	return []diagram.Endpoint{
		{EntityID: a.String(), Cardinality: ca},
		{EntityID: b.String(), Cardinality: cb},
	}
}

func TestRelationshipService_CreateRelationship(t *testing.T) {
	f := newFixture()
	svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

	rel, err := svc.CreateRelationship(context.Background(), CreateRelationshipRequest{
		DiagramID: f.diagram.ID.String(),
		Name:      "places",
		Entities:  endpoints(f.user.ID, f.order.ID, diagram.CardinalityZeroOrMany, diagram.CardinalityOneOrMany),
	})
	require.NoError(t, err)
	assert.Equal(t, diagram.ManyToMany, rel.Type)
	assert.Equal(t, diagram.Position{X: 100, Y: 50}, rel.Position, "defaults to the midpoint of its entities")
	assert.Equal(t, diagram.ActionNoAction, rel.OnDelete)
	assert.Equal(t, diagram.ParticipationPartial, rel.Entities[0].Participation)
	assert.Equal(t, diagram.DefaultRelationshipStyle, rel.Style)
	assert.Empty(t, f.schemaCode())
}

func TestRelationshipService_CreateRelationship_Rejects(t *testing.T) {
	f := newFixture()
	other := models.Entity{DiagramID: uuid.New(), Name: "Elsewhere"}
	require.NoError(t, f.entities.Create(context.Background(), &other))
	svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

	tests := []struct {
		name     string
		entities []diagram.Endpoint
		onDelete diagram.ReferentialAction
	}{
		{name: "self relationship", entities: endpoints(f.user.ID, f.user.ID, diagram.CardinalityOne, diagram.CardinalityOne)},
		{name: "entity of another diagram", entities: endpoints(f.user.ID, other.ID, diagram.CardinalityOne, diagram.CardinalityOne)},
		{name: "unknown entity", entities: endpoints(f.user.ID, uuid.New(), diagram.CardinalityOne, diagram.CardinalityOne)},
		{name: "bad cardinality", entities: endpoints(f.user.ID, f.order.ID, "2", diagram.CardinalityOne)},
		{name: "one endpoint", entities: endpoints(f.user.ID, f.order.ID, diagram.CardinalityOne, diagram.CardinalityOne)[:1]},
		{name: "bad action", entities: endpoints(f.user.ID, f.order.ID, diagram.CardinalityOne, diagram.CardinalityOne), onDelete: "DROP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRelationship(context.Background(), CreateRelationshipRequest{
				DiagramID: f.diagram.ID.String(),
				Name:      "r",
				Entities:  tt.entities,
				OnDelete:  tt.onDelete,
			})
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Len(t, f.db.relationships, 1)
		})
	}
}

func TestRelationshipService_UpdateRelationship(t *testing.T) {
	ctx := context.Background()

	t.Run("new cardinalities re-derive the type", func(t *testing.T) {
		f := newFixture()
		svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

		rel, err := svc.UpdateRelationship(ctx, f.owns.ID.String(), UpdateRelationshipRequest{
			Entities: endpoints(f.user.ID, f.order.ID, diagram.CardinalityOne, diagram.CardinalityZeroOrOne),
		})
		require.NoError(t, err)
		assert.Equal(t, diagram.OneToOne, rel.Type)
		assert.Equal(t, "owns", rel.Name)
		assert.Equal(t, diagram.Position{X: 100, Y: 50}, rel.Position)
		assert.Empty(t, f.schemaCode())
	})

	t.Run("partial update keeps endpoints", func(t *testing.T) {
		f := newFixture()
		svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

		cascade := diagram.ActionCascade
		rel, err := svc.UpdateRelationship(ctx, f.owns.ID.String(), UpdateRelationshipRequest{
			Name:     strPtr("has"),
			OnDelete: &cascade,
		})
		require.NoError(t, err)
		assert.Equal(t, "has", rel.Name)
		assert.Equal(t, diagram.ActionCascade, rel.OnDelete)
		assert.Equal(t, diagram.OneToMany, rel.Type)
		assert.Equal(t, f.user.ID.String(), rel.Entities[0].EntityID)
	})

	t.Run("move and restyle keep the cached schema", func(t *testing.T) {
		f := newFixture()
		svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

		style := diagram.DefaultRelationshipStyle
		rel, err := svc.UpdateRelationship(ctx, f.owns.ID.String(), UpdateRelationshipRequest{
			Position: &diagram.Position{X: 7, Y: 8},
			Style:    &style,
		})
		require.NoError(t, err)
		assert.Equal(t, diagram.Position{X: 7, Y: 8}, rel.Position)
		assert.Equal(t, "cached", f.schemaCode())
	})

	t.Run("structural changes clear the cached schema", func(t *testing.T) {
		cascade := diagram.ActionCascade
		tests := []struct {
			name      string
			req       UpdateRelationshipRequest
			endpoints bool
		}{
			{name: "rename", req: UpdateRelationshipRequest{Name: strPtr("has")}},
			{name: "on delete", req: UpdateRelationshipRequest{OnDelete: &cascade}},
			{name: "on update", req: UpdateRelationshipRequest{OnUpdate: &cascade}},
			{name: "endpoints", endpoints: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newFixture()
				svc := NewRelationshipService(f.rels, f.entities, f.diagrams)
				req := tt.req
				if tt.endpoints {
					req.Entities = endpoints(f.user.ID, f.order.ID, diagram.CardinalityOne, diagram.CardinalityOne)
				}

				_, err := svc.UpdateRelationship(ctx, f.owns.ID.String(), req)
				require.NoError(t, err)
				assert.Empty(t, f.schemaCode())
			})
		}
	})

	t.Run("self relationship rejected", func(t *testing.T) {
		f := newFixture()
		svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

		_, err := svc.UpdateRelationship(ctx, f.owns.ID.String(), UpdateRelationshipRequest{
			Entities: endpoints(f.order.ID, f.order.ID, diagram.CardinalityOne, diagram.CardinalityMany),
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, f.user.ID.String(), f.db.relationships[f.owns.ID].Entities[0].EntityID)
	})

	t.Run("missing", func(t *testing.T) {
		f := newFixture()
		svc := NewRelationshipService(f.rels, f.entities, f.diagrams)

		_, err := svc.UpdateRelationship(ctx, uuid.NewString(), UpdateRelationshipRequest{Name: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRelationshipService_DeleteRelationship(t *testing.T) {
	f := newFixture()
	svc := NewRelationshipService(f.rels, f.entities, f.diagrams)
	ctx := context.Background()

	require.NoError(t, svc.DeleteRelationship(ctx, f.owns.ID.String()))
	assert.Empty(t, f.db.relationships)
	assert.Len(t, f.db.entities, 2)
	assert.Empty(t, f.schemaCode())
	assert.ErrorIs(t, svc.DeleteRelationship(ctx, f.owns.ID.String()), ErrNotFound)
}
