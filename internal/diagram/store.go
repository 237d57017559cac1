package diagram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Store is the working copy of one diagram: its entities and relationships
// as canvas nodes and edges, the displayed schema text, and the editor's
// selection state. Mutations go through a single-consumer queue.
type Store struct {
	diagramID string
	backend   Backend
	logger    *slog.Logger
	notifier  Notifier
	confirmer Confirmer
	validate  *validator.Validate
	queue     *mutationQueue
	loading   atomic.Bool

	mu           sync.RWMutex
	meta         Diagram
	loaded       bool
	nodes        []Node
	edges        []Edge
	schema       string
	viewport     *Viewport
	selectedNode string
	selectedEdge string
	dropPosition *Position
	sidebar      SidebarMode
	tab          Tab
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithConfirmer(c Confirmer) Option {
	return func(s *Store) { s.confirmer = c }
}

// NewStore creates an empty store for diagramID. Call Load before editing
// and Close when the editor session ends.
func NewStore(diagramID string, backend Backend, opts ...Option) *Store {
	s := &Store{
		diagramID: diagramID,
		backend:   backend,
		logger:    slog.Default(),
		confirmer: AlwaysConfirm,
		validate:  newValidator(),
		queue:     newMutationQueue(),
		sidebar:   SidebarNone,
		tab:       TabDiagram,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("diagram_id", diagramID)
	if s.notifier == nil {
		s.notifier = logNotifier{logger: s.logger}
	}
	return s
}

func (s *Store) Close() {
	s.queue.close()
}

// run serializes fn with every other mutation of this store.
func (s *Store) run(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.queue.do(ctx, func(ctx context.Context) error {
		s.loading.Store(true)
		defer s.loading.Store(false)
		return fn(ctx)
	})
}

// Load fetches the diagram and replaces the whole working copy with it.
func (s *Store) Load(ctx context.Context) error {
	return s.run(ctx, s.load)
}

func (s *Store) load(ctx context.Context) error {
	d, err := s.backend.GetDiagram(ctx, s.diagramID)
	if err != nil {
		return &LoadError{DiagramID: s.diagramID, Err: err}
	}
	if d == nil {
		return &LoadError{DiagramID: s.diagramID, Err: ErrNotFound}
	}
	s.install(d)
	s.materializeSchema(ctx)
	return nil
}

func (s *Store) install(d *Diagram) {
	nodes := make([]Node, 0, len(d.Entities))
	known := make(map[string]bool, len(d.Entities))
	for _, e := range d.Entities {
		nodes = append(nodes, nodeFromEntity(e))
		known[e.ID] = true
	}

	edges := make([]Edge, 0, len(d.Relationships))
	for _, r := range d.Relationships {
		edge, ok := edgeFromRelationship(r)
		if !ok {
			s.logger.Warn("skipping relationship without two endpoints", "relationship_id", r.ID)
			continue
		}
		if !known[edge.Source] || !known[edge.Target] {
			s.logger.Warn("skipping dangling relationship", "relationship_id", r.ID)
			continue
		}
		edges = append(edges, edge)
	}

	meta := *d
	meta.Entities = nil
	meta.Relationships = nil

	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta = meta
	s.loaded = true
	s.nodes = nodes
	s.edges = edges
	s.schema = d.MongoDBSchemaCode
	if d.Layout != nil && d.Layout.Viewport != nil {
		v := *d.Layout.Viewport
		s.viewport = &v
	}
	s.selectedNode = ""
	s.selectedEdge = ""
	s.dropPosition = nil
	s.sidebar = SidebarNone
}

// MaterializeSchema shows the cached schema text, generating it when the
// diagram has entities but no cached text.
func (s *Store) MaterializeSchema(ctx context.Context) error {
	return s.run(ctx, func(ctx context.Context) error {
		s.materializeSchema(ctx)
		return nil
	})
}

func (s *Store) materializeSchema(ctx context.Context) {
	s.mu.RLock()
	cached, count := s.schema, len(s.nodes)
	s.mu.RUnlock()
	if cached != "" || count == 0 {
		return
	}
	s.regenerateSchema(ctx)
}

// regenerateSchema refreshes the schema text. Failures are logged and the
// previous text is kept.
func (s *Store) regenerateSchema(ctx context.Context) {
	if err := s.generateSchema(ctx); err != nil {
		s.logger.Warn("non-critical error updating schema", "error", err)
	}
}

func (s *Store) generateSchema(ctx context.Context) error {
	code, err := s.backend.GenerateSchema(ctx, s.diagramID)
	if err != nil {
		return &SchemaError{DiagramID: s.diagramID, Err: err}
	}
	s.mu.Lock()
	s.schema = code
	s.mu.Unlock()
	return nil
}

// Save persists node positions, relationship midpoints and the layout
// record, then regenerates the schema. Only the layout update decides
// whether the save succeeded.
func (s *Store) Save(ctx context.Context) error {
	return s.run(ctx, s.save)
}

func (s *Store) save(ctx context.Context) error {
	s.mu.Lock()
	nodes := make([]Node, len(s.nodes))
	copy(nodes, s.nodes)
	positions := make(map[string]Position, len(nodes))
	for _, n := range nodes {
		positions[n.ID] = n.Position
	}
	for i := range s.edges {
		src, okSrc := positions[s.edges[i].Source]
		dst, okDst := positions[s.edges[i].Target]
		if okSrc && okDst {
			s.edges[i].Position = Midpoint(src, dst)
		}
	}
	edges := make([]Edge, len(s.edges))
	copy(edges, s.edges)
	var viewport *Viewport
	if s.viewport != nil {
		v := *s.viewport
		viewport = &v
	}
	s.mu.Unlock()

	var g errgroup.Group
	for _, n := range nodes {
		id, pos := n.ID, n.Position
		g.Go(func() error {
			if _, err := s.backend.UpdateEntity(ctx, id, EntityPayload{Position: &pos}); err != nil {
				return fmt.Errorf("entity %s: %w", id, err)
			}
			return nil
		})
	}
	for _, e := range edges {
		if _, ok := positions[e.Source]; !ok {
			continue
		}
		if _, ok := positions[e.Target]; !ok {
			continue
		}
		id, pos := e.ID, e.Position
		g.Go(func() error {
			if _, err := s.backend.UpdateRelationship(ctx, id, RelationshipPayload{Position: &pos}); err != nil {
				return fmt.Errorf("relationship %s: %w", id, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("position update failed", "error", err)
	}

	layout := Layout{
		Nodes:    make([]LayoutNode, 0, len(nodes)),
		Edges:    make([]LayoutEdge, 0, len(edges)),
		Viewport: viewport,
	}
	for _, n := range nodes {
		layout.Nodes = append(layout.Nodes, LayoutNode{ID: n.ID, Position: n.Position, Type: n.Type})
	}
	for _, e := range edges {
		layout.Edges = append(layout.Edges, LayoutEdge{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Position: e.Position,
			Type:     e.Type,
		})
	}

	if err := s.backend.UpdateDiagramLayout(ctx, s.diagramID, layout); err != nil {
		s.notifier.Error("Save failed", fmt.Sprintf("Failed to save diagram: %v", err))
		return &PersistenceError{Op: "save diagram", Err: err}
	}

	if len(nodes) > 0 {
		s.regenerateSchema(ctx)
	}
	s.notifier.Success("Diagram saved", "All changes have been saved successfully")
	return nil
}

// Loading reports whether a mutation is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

func (s *Store) DiagramID() string {
	return s.diagramID
}

// Diagram returns the loaded diagram metadata without entities and
// relationships. ok is false before the first successful Load.
func (s *Store) Diagram() (Diagram, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta, s.loaded
}

func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

func (s *Store) Edges() []Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.clone()
	}
	return out
}

func (s *Store) Node(id string) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.nodeIndex(id); i >= 0 {
		return s.nodes[i].clone(), true
	}
	return Node{}, false
}

func (s *Store) Edge(id string) (Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.edgeIndex(id); i >= 0 {
		return s.edges[i].clone(), true
	}
	return Edge{}, false
}

// Schema returns the displayed schema text, possibly stale.
func (s *Store) Schema() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema
}

func (s *Store) Viewport() (Viewport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.viewport == nil {
		return Viewport{}, false
	}
	return *s.viewport, true
}

// nodeIndex and edgeIndex must be called with s.mu held.
func (s *Store) nodeIndex(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) edgeIndex(id string) int {
	for i := range s.edges {
		if s.edges[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nodePosition(id string) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.nodeIndex(id); i >= 0 {
		return s.nodes[i].Position, true
	}
	return Position{}, false
}

// fail notifies the user and returns err unchanged.
func (s *Store) fail(title, description string, err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		s.notifier.Error("Invalid input", verr.Error())
		return err
	}
	s.notifier.Error(title, description)
	return err
}
