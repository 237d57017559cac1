package diagram

import "time"

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Midpoint returns the arithmetic midpoint of a and b.
func Midpoint(a, b Position) Position {
	return Position{
		X: (a.X + b.X) / 2,
		Y: (a.Y + b.Y) / 2,
	}
}

type EntityKind string

const (
	KindRegular     EntityKind = "regular"
	KindWeak        EntityKind = "weak"
	KindAssociative EntityKind = "associative"
)

// EntityStyle is presentation only.
type EntityStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	TextColor       string `json:"textColor,omitempty" yaml:"textColor,omitempty"`
	BorderWidth     int    `json:"borderWidth,omitempty" yaml:"borderWidth,omitempty"`
}

type Entity struct {
	ID         string      `json:"id" yaml:"id"`
	DiagramID  string      `json:"diagramId,omitempty" yaml:"diagramId,omitempty"`
	Name       string      `json:"name" yaml:"name"`
	Kind       EntityKind  `json:"kind" yaml:"kind"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
	Style      EntityStyle `json:"style" yaml:"style"`
	Position   Position    `json:"position" yaml:"position"`
}

type Attribute struct {
	ID              string   `json:"id" yaml:"id"`
	EntityID        string   `json:"entityId,omitempty" yaml:"entityId,omitempty"`
	Name            string   `json:"name" yaml:"name"`
	DataType        DataType `json:"dataType" yaml:"dataType"`
	IsPrimaryKey    bool     `json:"isPrimaryKey" yaml:"isPrimaryKey"`
	IsForeignKey    bool     `json:"isForeignKey" yaml:"isForeignKey"`
	IsUnique        bool     `json:"isUnique" yaml:"isUnique"`
	IsNullable      bool     `json:"isNullable" yaml:"isNullable"`
	IsAutoIncrement bool     `json:"isAutoIncrement" yaml:"isAutoIncrement"`
	IsUnsigned      bool     `json:"isUnsigned" yaml:"isUnsigned"`
	DefaultValue    *string  `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Comment         *string  `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// ApplyKeyConstraints enforces the constraints a primary key implies.
// Clearing IsPrimaryKey leaves the other flags untouched.
func (a *Attribute) ApplyKeyConstraints() {
	if a.IsPrimaryKey {
		a.IsNullable = false
		a.IsUnique = true
	}
}

type Cardinality string

const (
	CardinalityZeroOrOne  Cardinality = "0..1"
	CardinalityOne        Cardinality = "1"
	CardinalityZeroOrMany Cardinality = "0..n"
	CardinalityOneOrMany  Cardinality = "1..n"
	CardinalityMany       Cardinality = "n"
)

func (c Cardinality) single() bool {
	return c == CardinalityOne || c == CardinalityZeroOrOne
}

func (c Cardinality) multiple() bool {
	return c == CardinalityMany || c == CardinalityZeroOrMany || c == CardinalityOneOrMany
}

type Participation string

const (
	ParticipationPartial Participation = "partial"
	ParticipationTotal   Participation = "total"
)

type RelationshipType string

const (
	OneToOne   RelationshipType = "one-to-one"
	OneToMany  RelationshipType = "one-to-many"
	ManyToMany RelationshipType = "many-to-many"
)

// DeriveType computes the relationship type from the cardinalities of both ends.
func DeriveType(source, target Cardinality) RelationshipType {
	switch {
	case source.single() && target.single():
		return OneToOne
	case source.multiple() && target.multiple():
		return ManyToMany
	default:
		return OneToMany
	}
}

type ReferentialAction string

const (
	ActionNoAction   ReferentialAction = "NO ACTION"
	ActionRestrict   ReferentialAction = "RESTRICT"
	ActionCascade    ReferentialAction = "CASCADE"
	ActionSetNull    ReferentialAction = "SET NULL"
	ActionSetDefault ReferentialAction = "SET DEFAULT"
)

// Endpoint describes one side of a relationship.
type Endpoint struct {
	EntityID      string        `json:"entityId" yaml:"entityId"`
	Role          string        `json:"role,omitempty" yaml:"role,omitempty"`
	Cardinality   Cardinality   `json:"cardinality" yaml:"cardinality"`
	Participation Participation `json:"participation" yaml:"participation"`
}

type RelationshipStyle struct {
	LineColor string `json:"lineColor,omitempty" yaml:"lineColor,omitempty"`
	LineStyle string `json:"lineStyle,omitempty" yaml:"lineStyle,omitempty"`
	LineWidth int    `json:"lineWidth,omitempty" yaml:"lineWidth,omitempty"`
}

// DefaultRelationshipStyle matches what the relationship form starts with.
var DefaultRelationshipStyle = RelationshipStyle{
	LineColor: "#000000",
	LineStyle: "solid",
	LineWidth: 1,
}

type Relationship struct {
	ID        string            `json:"id" yaml:"id"`
	DiagramID string            `json:"diagramId,omitempty" yaml:"diagramId,omitempty"`
	Name      string            `json:"name" yaml:"name"`
	Type      RelationshipType  `json:"type" yaml:"type"`
	Entities  []Endpoint        `json:"entities" yaml:"entities"`
	OnDelete  ReferentialAction `json:"onDelete" yaml:"onDelete"`
	OnUpdate  ReferentialAction `json:"onUpdate" yaml:"onUpdate"`
	Style     RelationshipStyle `json:"style" yaml:"style"`
	Position  Position          `json:"position" yaml:"position"`
}

// Source returns the first endpoint. ok is false for malformed relationships.
func (r *Relationship) Source() (Endpoint, bool) {
	if len(r.Entities) < 2 {
		return Endpoint{}, false
	}
	return r.Entities[0], true
}

func (r *Relationship) Target() (Endpoint, bool) {
	if len(r.Entities) < 2 {
		return Endpoint{}, false
	}
	return r.Entities[1], true
}

type Viewport struct {
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
	Zoom float64 `json:"zoom" yaml:"zoom"`
}

type LayoutNode struct {
	ID       string   `json:"id" yaml:"id"`
	Position Position `json:"position" yaml:"position"`
	Type     string   `json:"type" yaml:"type"`
}

type LayoutEdge struct {
	ID       string   `json:"id" yaml:"id"`
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Position Position `json:"position" yaml:"position"`
	Type     string   `json:"type" yaml:"type"`
}

type Layout struct {
	Nodes    []LayoutNode `json:"nodes" yaml:"nodes"`
	Edges    []LayoutEdge `json:"edges" yaml:"edges"`
	Viewport *Viewport    `json:"viewport,omitempty" yaml:"viewport,omitempty"`
}

// Diagram is the persisted aggregate the store is materialized from.
type Diagram struct {
	ID                string         `json:"id" yaml:"id"`
	ProjectID         string         `json:"projectId" yaml:"projectId"`
	Name              string         `json:"name" yaml:"name"`
	Description       string         `json:"description" yaml:"description"`
	IsPublic          bool           `json:"isPublic" yaml:"isPublic"`
	Version           int            `json:"version" yaml:"version"`
	Entities          []Entity       `json:"entities" yaml:"entities"`
	Relationships     []Relationship `json:"relationships" yaml:"relationships"`
	Layout            *Layout        `json:"layout,omitempty" yaml:"layout,omitempty"`
	MongoDBSchemaCode string         `json:"mongoDBSchemaCode,omitempty" yaml:"mongoDBSchemaCode,omitempty"`
	CreatedAt         time.Time      `json:"createdAt" yaml:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt" yaml:"updatedAt"`
}

// Settings are the editable diagram metadata.
type Settings struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic"`
	Version     int    `json:"version" validate:"gte=1"`
}
