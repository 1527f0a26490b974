// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MaxReferenceNumber bounds valid reference numbers. Matches at or above it
// are usually a year captured as the entry number.
const MaxReferenceNumber = 1000

// ParsedReference is one bibliography entry.
type ParsedReference struct {
	// Number is the citation index, e.g. 7 for "[7]".
	Number int `json:"number" yaml:"number"`

	// RawText is the entry text without its number prefix.
	RawText string `json:"raw_text" yaml:"raw_text"`

	// Authors is the best-effort author segment, nil when unknown.
	Authors *string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Title is the best-effort title segment, nil when unknown.
	Title *string `json:"title,omitempty" yaml:"title,omitempty"`

	PageNumber int `json:"page_number" yaml:"page_number"`
}

// Valid reports whether Number lies in (0, MaxReferenceNumber).
func (r ParsedReference) Valid() bool {
	return r.Number > 0 && r.Number < MaxReferenceNumber
}

// ReferencesSource records where a document's reference list came from.
type ReferencesSource string

const (
	SourceNone      ReferencesSource = ""
	SourceExternal  ReferencesSource = "external"
	SourceHeuristic ReferencesSource = "heuristic"
)

// ReferencesSectionState tracks the detected bibliography start.
type ReferencesSectionState struct {
	// StartPage is nil until a references section is found.
	StartPage *int             `json:"start_page,omitempty" yaml:"start_page,omitempty"`
	Source    ReferencesSource `json:"source" yaml:"source"`
}

// Detected reports whether a start page is known.
func (s ReferencesSectionState) Detected() bool {
	return s.StartPage != nil
}

// ExternalReferences is the reference list supplied by the backend service.
type ExternalReferences struct {
	Entries    []ParsedReference `json:"entries" yaml:"entries"`
	StartPage  int               `json:"start_page" yaml:"start_page"`
	TotalCount int               `json:"total_count" yaml:"total_count"`
}

// Usable reports whether the list can replace heuristic parsing.
func (e *ExternalReferences) Usable() bool {
	return e != nil && len(e.Entries) > 0 && e.StartPage > 0
}

// Provenance tags where a citation span came from.
type Provenance string

const (
	ProvenanceAnnotation Provenance = "annotation"
	ProvenancePattern    Provenance = "pattern"
)

// CitationSpan is a citation occurrence detected by the backend service.
type CitationSpan struct {
	RawText      string       `json:"raw_text" yaml:"raw_text"`
	PageNumber   int          `json:"page_number" yaml:"page_number"`
	Box          *BoundingBox `json:"box,omitempty" yaml:"box,omitempty"`

	// ReferenceIDs are bibliography entry numbers, matching
	// ParsedReference.Number.
	ReferenceIDs []int      `json:"reference_ids" yaml:"reference_ids"`
	Confidence   float64    `json:"confidence" yaml:"confidence"`
	Provenance   Provenance `json:"provenance" yaml:"provenance"`
}
