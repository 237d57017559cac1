package models

import (
	"time"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
)

// Diagram is the persisted aggregate. Entities and Relationships are only
// populated when the full graph is loaded.
type Diagram struct {
	ID                uuid.UUID       `json:"id"`
	ProjectID         uuid.UUID       `json:"projectId"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	IsPublic          bool            `json:"isPublic"`
	Version           int             `json:"version"`
	Entities          []Entity        `json:"entities"`
	Relationships     []Relationship  `json:"relationships"`
	Layout            *diagram.Layout `json:"layout,omitempty"`
	MongoDBSchemaCode string          `json:"mongoDBSchemaCode"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (d *Diagram) Prepare() {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Version < 1 {
		d.Version = 1
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

type Entity struct {
	ID         uuid.UUID           `json:"id"`
	DiagramID  uuid.UUID           `json:"diagramId"`
	Name       string              `json:"name"`
	Kind       diagram.EntityKind  `json:"kind"`
	Attributes []Attribute         `json:"attributes"`
	Style      diagram.EntityStyle `json:"style"`
	Position   diagram.Position    `json:"position"`
}

func (e *Entity) Prepare() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Kind == "" {
		e.Kind = diagram.KindRegular
	}
	if e.Attributes == nil {
		e.Attributes = []Attribute{}
	}
}

type Attribute struct {
	ID              uuid.UUID        `json:"id"`
	EntityID        uuid.UUID        `json:"entityId"`
	Name            string           `json:"name"`
	DataType        diagram.DataType `json:"dataType"`
	IsPrimaryKey    bool             `json:"isPrimaryKey"`
	IsForeignKey    bool             `json:"isForeignKey"`
	IsUnique        bool             `json:"isUnique"`
	IsNullable      bool             `json:"isNullable"`
	IsAutoIncrement bool             `json:"isAutoIncrement"`
	IsUnsigned      bool             `json:"isUnsigned"`
	DefaultValue    *string          `json:"defaultValue,omitempty"`
	Comment         *string          `json:"comment,omitempty"`
	Ordinal         int              `json:"-"`
}

// Prepare assigns an id, defaults the data type and applies the
// constraints implied by a primary key.
func (a *Attribute) Prepare() {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.DataType.IsZero() {
		a.DataType = diagram.TypeString
	}
	if a.IsPrimaryKey {
		a.IsNullable = false
		a.IsUnique = true
	}
}

type Relationship struct {
	ID        uuid.UUID                 `json:"id"`
	DiagramID uuid.UUID                 `json:"diagramId"`
	Name      string                    `json:"name"`
	Type      diagram.RelationshipType  `json:"type"`
	Entities  []diagram.Endpoint        `json:"entities"`
	OnDelete  diagram.ReferentialAction `json:"onDelete"`
	OnUpdate  diagram.ReferentialAction `json:"onUpdate"`
	Style     diagram.RelationshipStyle `json:"style"`
	Position  diagram.Position          `json:"position"`
}

// Prepare assigns an id, fills endpoint and action defaults and derives the
// type from the endpoint cardinalities.
func (r *Relationship) Prepare() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for i := range r.Entities {
		if r.Entities[i].Participation == "" {
			r.Entities[i].Participation = diagram.ParticipationPartial
		}
	}
	if r.OnDelete == "" {
		r.OnDelete = diagram.ActionNoAction
	}
	if r.OnUpdate == "" {
		r.OnUpdate = diagram.ActionNoAction
	}
	if r.Style == (diagram.RelationshipStyle{}) {
		r.Style = diagram.DefaultRelationshipStyle
	}
	if len(r.Entities) >= 2 {
		r.Type = diagram.DeriveType(r.Entities[0].Cardinality, r.Entities[1].Cardinality)
	}
}

// Source and Target return the endpoint entity ids. They must only be
// called on relationships with two endpoints.
func (r *Relationship) Source() diagram.Endpoint { return r.Entities[0] }

func (r *Relationship) Target() diagram.Endpoint { return r.Entities[1] }
