package diagram

const (
	NodeTypeEntity       = "entity"
	EdgeTypeRelationship = "relationship"
)

type NodeData struct {
	Name       string      `json:"name" yaml:"name"`
	Kind       EntityKind  `json:"kind" yaml:"kind"`
	Attributes []Attribute `json:"attributes" yaml:"attributes"`
	Style      EntityStyle `json:"style" yaml:"style"`
}

// Node is the canvas representation of an entity.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     NodeData `json:"data" yaml:"data"`
}

type EdgeData struct {
	Name     string            `json:"name" yaml:"name"`
	Type     RelationshipType  `json:"type" yaml:"type"`
	Entities []Endpoint        `json:"entities" yaml:"entities"`
	OnDelete ReferentialAction `json:"onDelete" yaml:"onDelete"`
	OnUpdate ReferentialAction `json:"onUpdate" yaml:"onUpdate"`
	Style    RelationshipStyle `json:"style" yaml:"style"`
}

// Edge is the canvas representation of a relationship. Source and Target
// are the ids of the endpoint nodes.
type Edge struct {
	ID       string   `json:"id" yaml:"id"`
	Source   string   `json:"source" yaml:"source"`
	Target   string   `json:"target" yaml:"target"`
	Type     string   `json:"type" yaml:"type"`
	Position Position `json:"position" yaml:"position"`
	Data     EdgeData `json:"data" yaml:"data"`
}

func nodeFromEntity(e Entity) Node {
	kind := e.Kind
	if kind == "" {
		kind = KindRegular
	}
	return Node{
		ID:       e.ID,
		Type:     NodeTypeEntity,
		Position: e.Position,
		Data: NodeData{
			Name:       e.Name,
			Kind:       kind,
			Attributes: cloneAttributes(e.Attributes),
			Style:      e.Style,
		},
	}
}

// edgeFromRelationship returns false for relationships with fewer than two
// endpoints; those cannot be drawn.
func edgeFromRelationship(r Relationship) (Edge, bool) {
	src, ok := r.Source()
	if !ok {
		return Edge{}, false
	}
	dst, _ := r.Target()
	return Edge{
		ID:       r.ID,
		Source:   src.EntityID,
		Target:   dst.EntityID,
		Type:     EdgeTypeRelationship,
		Position: r.Position,
		Data: EdgeData{
			Name:     r.Name,
			Type:     r.Type,
			Entities: cloneEndpoints(r.Entities),
			OnDelete: r.OnDelete,
			OnUpdate: r.OnUpdate,
			Style:    r.Style,
		},
	}, true
}

func (n Node) clone() Node {
	n.Data.Attributes = cloneAttributes(n.Data.Attributes)
	return n
}

func (e Edge) clone() Edge {
	e.Data.Entities = cloneEndpoints(e.Data.Entities)
	return e
}

func cloneAttributes(in []Attribute) []Attribute {
	out := make([]Attribute, len(in))
	for i, a := range in {
		a.DefaultValue = cloneString(a.DefaultValue)
		a.Comment = cloneString(a.Comment)
		out[i] = a
	}
	return out
}

func cloneEndpoints(in []Endpoint) []Endpoint {
	if in == nil {
		return nil
	}
	out := make([]Endpoint, len(in))
	copy(out, in)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
