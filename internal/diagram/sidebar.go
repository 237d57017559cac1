package diagram

import "fmt"

type SidebarMode string

const (
	SidebarNone            SidebarMode = "none"
	SidebarEntity          SidebarMode = "entity"
	SidebarNewEntity       SidebarMode = "new-entity"
	SidebarNewAttribute    SidebarMode = "new-attribute"
	SidebarRelationship    SidebarMode = "relationship"
	SidebarNewRelationship SidebarMode = "new-relationship"
	SidebarSettings        SidebarMode = "settings"
)

type Tab string

const (
	TabDiagram Tab = "diagram"
	TabPreview Tab = "preview"
	TabCode    Tab = "code"
)

func (t Tab) valid() bool {
	return t == TabDiagram || t == TabPreview || t == TabCode
}

// SidebarEvent drives the sidebar state machine.
type SidebarEvent string

const (
	EventNodeClicked         SidebarEvent = "node-clicked"
	EventEdgeClicked         SidebarEvent = "edge-clicked"
	EventPaneClicked         SidebarEvent = "pane-clicked"
	EventNodeDropped         SidebarEvent = "node-dropped"
	EventAddAttribute        SidebarEvent = "add-attribute"
	EventAttributeDone       SidebarEvent = "attribute-done"
	EventAddRelationship     SidebarEvent = "add-relationship"
	EventOpenSettings        SidebarEvent = "open-settings"
	EventCloseSettings       SidebarEvent = "close-settings"
	EventEntityCreated       SidebarEvent = "entity-created"
	EventRelationshipCreated SidebarEvent = "relationship-created"
	EventRelationshipClosed  SidebarEvent = "relationship-closed"
	EventDeleted             SidebarEvent = "deleted"
)

// sidebarTransitions lists, per event, the states it may fire from. A nil
// set means the event is accepted in every state.
var sidebarTransitions = map[SidebarEvent]struct {
	from []SidebarMode
	to   SidebarMode
}{
	EventNodeClicked:         {nil, SidebarEntity},
	EventEdgeClicked:         {nil, SidebarRelationship},
	EventPaneClicked:         {nil, SidebarNone},
	EventNodeDropped:         {nil, SidebarNewEntity},
	EventAddAttribute:        {[]SidebarMode{SidebarEntity}, SidebarNewAttribute},
	EventAttributeDone:       {[]SidebarMode{SidebarNewAttribute, SidebarEntity}, SidebarEntity},
	EventAddRelationship:     {nil, SidebarNewRelationship},
	EventOpenSettings:        {nil, SidebarSettings},
	EventCloseSettings:       {[]SidebarMode{SidebarSettings}, SidebarNone},
	EventEntityCreated:       {nil, SidebarEntity},
	EventRelationshipCreated: {nil, SidebarRelationship},
	EventRelationshipClosed:  {nil, SidebarNone},
	EventDeleted:             {nil, SidebarNone},
}

// TransitionError is returned for events not accepted in the current mode.
type TransitionError struct {
	From  SidebarMode
	Event SidebarEvent
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("sidebar: event %q not allowed in mode %q", e.Event, e.From)
}

// NextSidebarMode returns the mode reached from `from` on event ev.
func NextSidebarMode(from SidebarMode, ev SidebarEvent) (SidebarMode, error) {
	t, ok := sidebarTransitions[ev]
	if !ok {
		return from, &TransitionError{From: from, Event: ev}
	}
	if t.from == nil {
		return t.to, nil
	}
	for _, m := range t.from {
		if m == from {
			return t.to, nil
		}
	}
	return from, &TransitionError{From: from, Event: ev}
}
