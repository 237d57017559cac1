package diagram

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend keeps a diagram in memory and records calls.
type fakeBackend struct {
	mu sync.Mutex

	diagram *Diagram
	nextID  int
	schema  string

	getErr      error
	layoutErr   error
	createErr   error
	updateErr   error
	deleteErr   error
	schemaErr   error
	applyErr    error
	settingsErr error

	layouts          []Layout
	entityUpdates    map[string][]EntityPayload
	relUpdates       map[string][]RelationshipPayload
	attributeUpdates map[string][]AttributePayload
	relCreates       []RelationshipPayload
	attrCreates      []AttributePayload
	generateCalls    int
	applied          string
	afterApply       *Diagram
	deletedEntities  []string
}

func newFakeBackend(d *Diagram) *fakeBackend {
	return &fakeBackend{
		diagram:          d,
		schema:           "generated",
		entityUpdates:    map[string][]EntityPayload{},
		relUpdates:       map[string][]RelationshipPayload{},
		attributeUpdates: map[string][]AttributePayload{},
	}
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) GetDiagram(_ context.Context, id string) (*Diagram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.diagram == nil || f.diagram.ID != id {
		return nil, nil
	}
	d := *f.diagram
	return &d, nil
}

func (f *fakeBackend) UpdateDiagram(_ context.Context, id string, settings Settings) (*Diagram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	f.diagram.Name = settings.Name
	f.diagram.Description = settings.Description
	f.diagram.IsPublic = settings.IsPublic
	f.diagram.Version = settings.Version
	d := *f.diagram
	return &d, nil
}

func (f *fakeBackend) UpdateDiagramLayout(_ context.Context, id string, layout Layout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.layoutErr != nil {
		return f.layoutErr
	}
	f.layouts = append(f.layouts, layout)
	f.diagram.Layout = &layout
	return nil
}

func (f *fakeBackend) CreateEntity(_ context.Context, p EntityPayload) (*Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	e := Entity{ID: f.id("entity"), DiagramID: p.DiagramID}
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Kind != nil {
		e.Kind = *p.Kind
	}
	if p.Style != nil {
		e.Style = *p.Style
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	return &e, nil
}

func (f *fakeBackend) UpdateEntity(_ context.Context, id string, p EntityPayload) (*Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.entityUpdates[id] = append(f.entityUpdates[id], p)
	for i := range f.diagram.Entities {
		if f.diagram.Entities[i].ID == id && p.Position != nil {
			f.diagram.Entities[i].Position = *p.Position
		}
	}
	return &Entity{ID: id}, nil
}

func (f *fakeBackend) DeleteEntity(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedEntities = append(f.deletedEntities, id)
	return nil
}

func (f *fakeBackend) CreateAttribute(_ context.Context, p AttributePayload) (*Attribute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.attrCreates = append(f.attrCreates, p)
	return &Attribute{
		ID:              f.id("attr"),
		EntityID:        p.EntityID,
		Name:            p.Name,
		DataType:        p.DataType,
		IsPrimaryKey:    p.IsPrimaryKey,
		IsForeignKey:    p.IsForeignKey,
		IsUnique:        p.IsUnique,
		IsNullable:      p.IsNullable,
		IsAutoIncrement: p.IsAutoIncrement,
		IsUnsigned:      p.IsUnsigned,
		DefaultValue:    p.DefaultValue,
		Comment:         p.Comment,
	}, nil
}

func (f *fakeBackend) UpdateAttribute(_ context.Context, id string, p AttributePayload) (*Attribute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.attributeUpdates[id] = append(f.attributeUpdates[id], p)
	return &Attribute{ID: id, Name: p.Name}, nil
}

func (f *fakeBackend) DeleteAttribute(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeBackend) CreateRelationship(_ context.Context, p RelationshipPayload) (*Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.relCreates = append(f.relCreates, p)
	r := Relationship{ID: f.id("rel"), DiagramID: p.DiagramID, Entities: p.Entities}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.OnDelete != nil {
		r.OnDelete = *p.OnDelete
	}
	if p.OnUpdate != nil {
		r.OnUpdate = *p.OnUpdate
	}
	if p.Style != nil {
		r.Style = *p.Style
	}
	if p.Position != nil {
		r.Position = *p.Position
	}
	return &r, nil
}

func (f *fakeBackend) UpdateRelationship(_ context.Context, id string, p RelationshipPayload) (*Relationship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.relUpdates[id] = append(f.relUpdates[id], p)
	for i := range f.diagram.Relationships {
		if f.diagram.Relationships[i].ID == id && p.Position != nil {
			f.diagram.Relationships[i].Position = *p.Position
		}
	}
	return &Relationship{ID: id}, nil
}

func (f *fakeBackend) DeleteRelationship(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeBackend) GenerateSchema(_ context.Context, diagramID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generateCalls++
	if f.schemaErr != nil {
		return "", f.schemaErr
	}
	return f.schema, nil
}

func (f *fakeBackend) ApplySchema(_ context.Context, diagramID, schemaCode string) (*Diagram, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return nil, f.applyErr
	}
	f.applied = schemaCode
	if f.afterApply != nil {
		f.diagram = f.afterApply
	}
	d := *f.diagram
	return &d, nil
}

func (f *fakeBackend) Preview(_ context.Context, diagramID string) (string, error) {
	return "erDiagram", nil
}

type note struct {
	ok          bool
	title, desc string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (r *recordingNotifier) Success(title, desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{true, title, desc})
}

func (r *recordingNotifier) Error(title, desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{false, title, desc})
}

func (r *recordingNotifier) last() note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return note{}
	}
	return r.notes[len(r.notes)-1]
}

// twoEntityDiagram has User at (0,0) and Order at (200,100) joined by "owns".
func twoEntityDiagram() *Diagram {
	return &Diagram{
		ID:      "d1",
		Name:    "shop",
		Version: 1,
		Entities: []Entity{
			{ID: "user", Name: "User", Kind: KindRegular, Attributes: []Attribute{
				{ID: "user-id", Name: "id", DataType: TypeObjectID, IsPrimaryKey: true, IsUnique: true},
			}},
			{ID: "order", Name: "Order", Position: Position{X: 200, Y: 100}},
		},
		Relationships: []Relationship{{
			ID:   "owns",
			Name: "owns",
			Type: OneToMany,
			Entities: []Endpoint{
				{EntityID: "user", Cardinality: CardinalityOne, Participation: ParticipationPartial},
				{EntityID: "order", Cardinality: CardinalityMany, Participation: ParticipationTotal},
			},
			OnDelete: ActionCascade,
			OnUpdate: ActionNoAction,
		}},
		MongoDBSchemaCode: "cached",
	}
}
