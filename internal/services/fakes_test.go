package services

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
	"erdiagram/internal/repositories"
)

// memDB is an in-memory stand-in for the Postgres repositories with the
// same cascade rules.
type memDB struct {
	projects      map[uuid.UUID]models.Project
	diagrams      map[uuid.UUID]models.Diagram
	entities      map[uuid.UUID]models.Entity
	attributes    map[uuid.UUID]models.Attribute
	relationships map[uuid.UUID]models.Relationship
	seq           map[uuid.UUID]int

	next       int
	replaceErr error
}

func newMemDB() *memDB {
	return &memDB{
		projects:      map[uuid.UUID]models.Project{},
		diagrams:      map[uuid.UUID]models.Diagram{},
		entities:      map[uuid.UUID]models.Entity{},
		attributes:    map[uuid.UUID]models.Attribute{},
		relationships: map[uuid.UUID]models.Relationship{},
		seq:           map[uuid.UUID]int{},
	}
}

func (db *memDB) stamp(id uuid.UUID) {
	db.next++
	db.seq[id] = db.next
}

func (db *memDB) ordered(ids []uuid.UUID) []uuid.UUID {
	sort.Slice(ids, func(i, j int) bool { return db.seq[ids[i]] < db.seq[ids[j]] })
	return ids
}

func (db *memDB) deleteEntity(id uuid.UUID) {
	delete(db.entities, id)
	for aid, a := range db.attributes {
		if a.EntityID == id {
			delete(db.attributes, aid)
		}
	}
	for rid, r := range db.relationships {
		if r.Entities[0].EntityID == id.String() || r.Entities[1].EntityID == id.String() {
			delete(db.relationships, rid)
		}
	}
}

func (db *memDB) stores() (*fakeProjects, *fakeDiagrams, *fakeGraph, *fakeEntities, *fakeAttributes, *fakeRelationships) {
	return &fakeProjects{db}, &fakeDiagrams{db}, &fakeGraph{db}, &fakeEntities{db}, &fakeAttributes{db}, &fakeRelationships{db}
}

type fakeProjects struct{ db *memDB }

func (f *fakeProjects) Create(_ context.Context, p *models.Project) error {
	p.Prepare()
	f.db.projects[p.ID] = *p
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	p, ok := f.db.projects[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeProjects) List(context.Context) ([]models.Project, error) {
	out := []models.Project{}
	for _, p := range f.db.projects {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProjects) Update(_ context.Context, p *models.Project) error {
	if _, ok := f.db.projects[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	p.Prepare()
	f.db.projects[p.ID] = *p
	return nil
}

func (f *fakeProjects) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.db.projects[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.db.projects, id)
	for did, d := range f.db.diagrams {
		if d.ProjectID == id {
			delete(f.db.diagrams, did)
		}
	}
	return nil
}

type fakeDiagrams struct{ db *memDB }

func (f *fakeDiagrams) Create(_ context.Context, d *models.Diagram) error {
	d.Prepare()
	row := *d
	row.Entities, row.Relationships = nil, nil
	f.db.diagrams[d.ID] = row
	return nil
}

func (f *fakeDiagrams) GetByID(_ context.Context, id uuid.UUID) (*models.Diagram, error) {
	d, ok := f.db.diagrams[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDiagrams) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.Diagram, error) {
	out := []models.Diagram{}
	for _, d := range f.db.diagrams {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDiagrams) Update(_ context.Context, d *models.Diagram) error {
	row, ok := f.db.diagrams[d.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	d.Prepare()
	row.Name, row.Description, row.IsPublic, row.Version = d.Name, d.Description, d.IsPublic, d.Version
	f.db.diagrams[d.ID] = row
	return nil
}

func (f *fakeDiagrams) UpdateLayout(_ context.Context, id uuid.UUID, layout diagram.Layout) error {
	row, ok := f.db.diagrams[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.Layout = &layout
	f.db.diagrams[id] = row
	return nil
}

func (f *fakeDiagrams) SetSchemaCode(_ context.Context, id uuid.UUID, code string) error {
	row, ok := f.db.diagrams[id]
	if !ok {
		return repositories.ErrNotFound
	}
	row.MongoDBSchemaCode = code
	f.db.diagrams[id] = row
	return nil
}

func (f *fakeDiagrams) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.db.diagrams[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.db.diagrams, id)
	for eid, e := range f.db.entities {
		if e.DiagramID == id {
			f.db.deleteEntity(eid)
		}
	}
	return nil
}

type fakeGraph struct{ db *memDB }

func (f *fakeGraph) Load(_ context.Context, diagramID uuid.UUID) ([]models.Entity, []models.Relationship, error) {
	var eids, rids []uuid.UUID
	for id, e := range f.db.entities {
		if e.DiagramID == diagramID {
			eids = append(eids, id)
		}
	}
	for id, r := range f.db.relationships {
		if r.DiagramID == diagramID {
			rids = append(rids, id)
		}
	}

	entities := []models.Entity{}
	for _, id := range f.db.ordered(eids) {
		e := f.db.entities[id]
		e.Attributes = (&fakeAttributes{f.db}).list(id)
		entities = append(entities, e)
	}
	rels := []models.Relationship{}
	for _, id := range f.db.ordered(rids) {
		rels = append(rels, f.db.relationships[id])
	}
	return entities, rels, nil
}

func (f *fakeGraph) Replace(ctx context.Context, diagramID uuid.UUID, entities []models.Entity, rels []models.Relationship, code string) error {
	if f.db.replaceErr != nil {
		return f.db.replaceErr
	}
	for id, e := range f.db.entities {
		if e.DiagramID == diagramID {
			f.db.deleteEntity(id)
		}
	}
	ents, attrs, relRepo := &fakeEntities{f.db}, &fakeAttributes{f.db}, &fakeRelationships{f.db}
	for i := range entities {
		e := &entities[i]
		e.DiagramID = diagramID
		_ = ents.Create(ctx, e)
		for j := range e.Attributes {
			e.Attributes[j].EntityID = e.ID
			_ = attrs.Create(ctx, &e.Attributes[j])
		}
	}
	for i := range rels {
		rels[i].DiagramID = diagramID
		if err := relRepo.Create(ctx, &rels[i]); err != nil {
			return err
		}
	}
	return (&fakeDiagrams{f.db}).SetSchemaCode(ctx, diagramID, code)
}

type fakeEntities struct{ db *memDB }

func (f *fakeEntities) Create(_ context.Context, e *models.Entity) error {
	e.Prepare()
	row := *e
	row.Attributes = nil
	f.db.entities[e.ID] = row
	f.db.stamp(e.ID)
	return nil
}

func (f *fakeEntities) GetByID(_ context.Context, id uuid.UUID) (*models.Entity, error) {
	e, ok := f.db.entities[id]
	if !ok {
		return nil, nil
	}
	e.Attributes = []models.Attribute{}
	return &e, nil
}

func (f *fakeEntities) Update(_ context.Context, e *models.Entity) error {
	if _, ok := f.db.entities[e.ID]; !ok {
		return repositories.ErrNotFound
	}
	row := *e
	row.Attributes = nil
	f.db.entities[e.ID] = row
	return nil
}

func (f *fakeEntities) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.db.entities[id]; !ok {
		return repositories.ErrNotFound
	}
	f.db.deleteEntity(id)
	return nil
}

type fakeAttributes struct{ db *memDB }

func (f *fakeAttributes) list(entityID uuid.UUID) []models.Attribute {
	out := []models.Attribute{}
	for _, a := range f.db.attributes {
		if a.EntityID == entityID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out
}

func (f *fakeAttributes) Create(_ context.Context, a *models.Attribute) error {
	if _, ok := f.db.entities[a.EntityID]; !ok {
		return errors.New("foreign key violation")
	}
	a.Prepare()
	a.Ordinal = len(f.list(a.EntityID))
	f.db.attributes[a.ID] = *a
	return nil
}

func (f *fakeAttributes) GetByID(_ context.Context, id uuid.UUID) (*models.Attribute, error) {
	a, ok := f.db.attributes[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAttributes) ListByEntity(_ context.Context, entityID uuid.UUID) ([]models.Attribute, error) {
	return f.list(entityID), nil
}

func (f *fakeAttributes) Update(_ context.Context, a *models.Attribute) error {
	old, ok := f.db.attributes[a.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	a.Prepare()
	a.EntityID, a.Ordinal = old.EntityID, old.Ordinal
	f.db.attributes[a.ID] = *a
	return nil
}

func (f *fakeAttributes) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.db.attributes[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.db.attributes, id)
	return nil
}

type fakeRelationships struct{ db *memDB }

func (f *fakeRelationships) Create(_ context.Context, rel *models.Relationship) error {
	rel.Prepare()
	if len(rel.Entities) != 2 || rel.Entities[0].EntityID == rel.Entities[1].EntityID {
		return errors.New("check constraint violation")
	}
	f.db.relationships[rel.ID] = *rel
	f.db.stamp(rel.ID)
	return nil
}

func (f *fakeRelationships) GetByID(_ context.Context, id uuid.UUID) (*models.Relationship, error) {
	r, ok := f.db.relationships[id]
	if !ok {
		return nil, nil
	}
	r.Entities = append([]diagram.Endpoint(nil), r.Entities...)
	return &r, nil
}

func (f *fakeRelationships) Update(_ context.Context, rel *models.Relationship) error {
	if _, ok := f.db.relationships[rel.ID]; !ok {
		return repositories.ErrNotFound
	}
	rel.Prepare()
	f.db.relationships[rel.ID] = *rel
	return nil
}

func (f *fakeRelationships) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.db.relationships[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.db.relationships, id)
	return nil
}

type fakeCache struct {
	codes  map[string]string
	getErr error
	sets   int
}

func newFakeCache() *fakeCache { return &fakeCache{codes: map[string]string{}} }

func (c *fakeCache) Get(_ context.Context, fp string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	code, ok := c.codes[fp]
	return code, ok, nil
}

func (c *fakeCache) Set(_ context.Context, fp, code string) error {
	c.sets++
	c.codes[fp] = code
	return nil
}

type fakeGenerator struct {
	code      string
	parsed    *ParsedGraph
	err       error
	generated int
	parsedIn  []string
}

func (g *fakeGenerator) Generate(_ context.Context, d *models.Diagram) (string, error) {
	g.generated++
	if g.err != nil {
		return "", g.err
	}
	return g.code, nil
}

func (g *fakeGenerator) Parse(_ context.Context, code string) (*ParsedGraph, error) {
	g.parsedIn = append(g.parsedIn, code)
	if g.err != nil {
		return nil, g.err
	}
	return g.parsed, nil
}

// fixture is a project with one diagram holding User (with a PK "id"),
// Order and a one-to-many "owns" relationship. The diagram caches "cached".
type fixture struct {
	db       *memDB
	projects *fakeProjects
	diagrams *fakeDiagrams
	graph    *fakeGraph
	entities *fakeEntities
	attrs    *fakeAttributes
	rels     *fakeRelationships
	project  models.Project
	diagram  models.Diagram
	user     models.Entity
	order    models.Entity
	userID   models.Attribute
	owns     models.Relationship
}

func newFixture() *fixture {
	ctx := context.Background()
	db := newMemDB()
	projects, diagrams, graph, entities, attrs, rels := db.stores()
	f := &fixture{db: db, projects: projects, diagrams: diagrams, graph: graph, entities: entities, attrs: attrs, rels: rels}

	f.project = models.Project{Name: "shop"}
	_ = projects.Create(ctx, &f.project)
	f.diagram = models.Diagram{ProjectID: f.project.ID, Name: "orders", MongoDBSchemaCode: "cached"}
	_ = diagrams.Create(ctx, &f.diagram)

	f.user = models.Entity{DiagramID: f.diagram.ID, Name: "User", Position: diagram.Position{X: 0, Y: 0}}
	f.order = models.Entity{DiagramID: f.diagram.ID, Name: "Order", Position: diagram.Position{X: 200, Y: 100}}
	_ = entities.Create(ctx, &f.user)
	_ = entities.Create(ctx, &f.order)

	f.userID = models.Attribute{EntityID: f.user.ID, Name: "id", IsPrimaryKey: true}
	_ = attrs.Create(ctx, &f.userID)

	f.owns = models.Relationship{
		DiagramID: f.diagram.ID,
		Name:      "owns",
		Entities: []diagram.Endpoint{
			{EntityID: f.user.ID.String(), Cardinality: diagram.CardinalityOne},
			{EntityID: f.order.ID.String(), Cardinality: diagram.CardinalityMany},
		},
	}
	_ = rels.Create(ctx, &f.owns)
	return f
}

func (f *fixture) schemaCode() string {
	return f.db.diagrams[f.diagram.ID].MongoDBSchemaCode
}
