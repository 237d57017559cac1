package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

func TestRenderMermaid(t *testing.T) {
	owner := models.Entity{ID: uuid.New(), Name: "Account Holder", Kind: diagram.KindRegular, Attributes: []models.Attribute{
		{Name: "id", DataType: diagram.TypeUUID, IsPrimaryKey: true, IsUnique: true},
		{Name: "email", DataType: diagram.TypeEmail, IsUnique: true, Comment: strPtr(`the "login"`)},
	}}
	line := models.Entity{ID: uuid.New(), Name: "LineItem", Kind: diagram.KindWeak, Attributes: []models.Attribute{
		{Name: "holder_id", DataType: diagram.Custom("varchar(36)"), IsForeignKey: true},
	}}
	tag := models.Entity{ID: uuid.New(), Name: "Tag"}

	rel := func(name string, a, b models.Entity, ca, cb diagram.Cardinality) models.Relationship {
		return models.Relationship{Name: name, Entities: []diagram.Endpoint{
			{EntityID: a.ID.String(), Cardinality: ca},
			{EntityID: b.ID.String(), Cardinality: cb},
		}}
	}

	d := &models.Diagram{
		Entities: []models.Entity{owner, line, tag},
		Relationships: []models.Relationship{
			rel("holds", owner, line, diagram.CardinalityOne, diagram.CardinalityOneOrMany),
			rel("holds", owner, line, diagram.CardinalityOne, diagram.CardinalityOneOrMany),
			rel("labels", tag, owner, diagram.CardinalityZeroOrMany, diagram.CardinalityZeroOrOne),
			{Name: "dangling", Entities: []diagram.Endpoint{{EntityID: uuid.NewString()}, {EntityID: tag.ID.String()}}},
		},
	}

	out := RenderMermaid(d)

	assert.True(t, strings.HasPrefix(out, "erDiagram\n"))
	assert.Equal(t, 1, strings.Count(out, `ACCOUNT_HOLDER ||--|{ LINEITEM : "holds"`), "duplicates are dropped, weak entities draw identifying lines")
	assert.Contains(t, out, `TAG }o..o| ACCOUNT_HOLDER : "labels"`)
	assert.NotContains(t, out, "dangling")
	assert.Contains(t, out, "        uuid id PK\n")
	assert.Contains(t, out, `        email email UK "the 'login'"`)
	assert.Contains(t, out, "        varchar(36) holder_id FK\n")
	assert.Contains(t, out, "    TAG\n")
}

func TestMermaidType(t *testing.T) {
	tests := []struct {
		in   diagram.DataType
		want string
	}{
		{diagram.TypeString, "string"},
		{diagram.TypeObjectID, "objectid"},
		{diagram.Custom("double precision"), "double_precision"},
		{diagram.Custom("3d-point"), "t_3d-point"},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, mermaidType(tt.in))
		})
	}
}
