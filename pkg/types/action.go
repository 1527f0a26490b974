// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ActionKind selects what the host UI does after a click.
type ActionKind string

const (
	ActionNoop            ActionKind = "noop"
	ActionNavigate        ActionKind = "navigate"
	ActionSearch          ActionKind = "search"
	ActionReferenceLookup ActionKind = "reference_lookup"
)

// ResolverAction is the result of resolving a clicked fragment.
type ResolverAction struct {
	Kind ActionKind `json:"kind" yaml:"kind"`

	// Location is set for ActionNavigate.
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`

	// Query is set for ActionSearch.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// ReferenceNumber is set for ActionReferenceLookup, and for ActionSearch
	// when the citation was numeric.
	ReferenceNumber int `json:"reference_number,omitempty" yaml:"reference_number,omitempty"`
}

// Noop is the action for clicks that resolve to nothing.
func Noop() ResolverAction { return ResolverAction{Kind: ActionNoop} }

// OutlineEntry is one row in the navigation sidebar.
type OutlineEntry struct {
	ID         string  `json:"id" yaml:"id"`
	Label      string  `json:"label" yaml:"label"`
	PageNumber int     `json:"page_number" yaml:"page_number"`
	Y          float64 `json:"y" yaml:"y"`
}

// Outline groups navigable entries for the sidebar.
type Outline struct {
	Sections   []OutlineEntry `json:"sections" yaml:"sections"`
	Figures    []OutlineEntry `json:"figures" yaml:"figures"`
	Tables     []OutlineEntry `json:"tables" yaml:"tables"`
	Equations  []OutlineEntry `json:"equations" yaml:"equations"`
	References []OutlineEntry `json:"references" yaml:"references"`
}
