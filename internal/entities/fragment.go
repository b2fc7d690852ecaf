// Package entities contains the core domain objects for the transit board application
package entities

// FragmentKind tags a piece of extracted page text
type FragmentKind string

const (
	KindScheduled        FragmentKind = "scheduled"
	KindArrivalEstimate  FragmentKind = "arrival_estimate"
	KindDisruptionNotice FragmentKind = "disruption_notice"
)

// Fragment is one tagged piece of source text, in document order
type Fragment struct {
	Kind          FragmentKind
	Text          string // Trimmed node text
	CompanionText string // Sibling text, e.g. the "N分後に到着" annotation
}

// FragmentGroup holds the fragments of one source list item.
// TransitMinutes is the page-declared journey duration, empty if the page has none.
type FragmentGroup struct {
	Fragments      []Fragment
	TransitMinutes string
}
