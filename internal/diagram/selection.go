package diagram

import "fmt"

// SelectNode handles a click on a node. It clears any selected edge.
func (s *Store) SelectNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nodeIndex(id) < 0 {
		return fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	s.selectedEdge = ""
	s.selectedNode = id
	return s.transition(EventNodeClicked)
}

// SelectEdge handles a click on an edge. It clears any selected node.
func (s *Store) SelectEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edgeIndex(id) < 0 {
		return fmt.Errorf("relationship %s: %w", id, ErrNotFound)
	}
	s.selectedNode = ""
	s.selectedEdge = id
	return s.transition(EventEdgeClicked)
}

// ClearSelection handles a click on the empty canvas.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelection()
	s.dropPosition = nil
	_ = s.transition(EventPaneClicked)
}

// DropNode records where a new entity was dropped and opens the new-entity form.
func (s *Store) DropNode(pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelection()
	s.dropPosition = &pos
	_ = s.transition(EventNodeDropped)
}

// DropPosition returns the position of the pending new entity, if any.
func (s *Store) DropPosition() (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dropPosition == nil {
		return Position{}, false
	}
	return *s.dropPosition, true
}

// BeginAddAttribute opens the attribute form for the selected entity.
func (s *Store) BeginAddAttribute() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedNode == "" {
		return &TransitionError{From: s.sidebar, Event: EventAddAttribute}
	}
	return s.transition(EventAddAttribute)
}

// CancelAttribute returns from the attribute form to the entity view.
func (s *Store) CancelAttribute() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(EventAttributeDone)
}

func (s *Store) BeginAddRelationship() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.transition(EventAddRelationship)
}

// CloseRelationship leaves the relationship views without saving.
func (s *Store) CloseRelationship() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedEdge = ""
	_ = s.transition(EventRelationshipClosed)
}

func (s *Store) OpenSettings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.transition(EventOpenSettings)
}

func (s *Store) CloseSettings() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition(EventCloseSettings)
}

func (s *Store) SetActiveTab(tab Tab) error {
	if !tab.valid() {
		return &ValidationError{Field: "tab", Reason: fmt.Sprintf("unknown tab %q", tab)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
	return nil
}

// MoveNode applies a drag on the canvas. The new position is persisted by Save.
func (s *Store) MoveNode(id string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.nodeIndex(id)
	if i < 0 {
		return fmt.Errorf("entity %s: %w", id, ErrNotFound)
	}
	s.nodes[i].Position = pos
	return nil
}

func (s *Store) SetViewport(v Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = &v
}

// SelectedNode returns a copy of the selected node, or nil.
func (s *Store) SelectedNode() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.nodeIndex(s.selectedNode); i >= 0 {
		n := s.nodes[i].clone()
		return &n
	}
	return nil
}

// SelectedEdge returns a copy of the selected edge, or nil.
func (s *Store) SelectedEdge() *Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.edgeIndex(s.selectedEdge); i >= 0 {
		e := s.edges[i].clone()
		return &e
	}
	return nil
}

func (s *Store) SidebarMode() SidebarMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sidebar
}

func (s *Store) ActiveTab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tab
}

// transition and clearSelection must be called with s.mu held.
func (s *Store) transition(ev SidebarEvent) error {
	next, err := NextSidebarMode(s.sidebar, ev)
	if err != nil {
		return err
	}
	s.sidebar = next
	return nil
}

func (s *Store) clearSelection() {
	s.selectedNode = ""
	s.selectedEdge = ""
}
