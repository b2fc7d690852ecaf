package usecases

import (
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
)

// DerivedViewProjector narrows a report to a named corridor of lines
type DerivedViewProjector struct {
	lines map[string]struct{}
	Now   func() time.Time
}

// NewDerivedViewProjector creates a projector for the given line names
func NewDerivedViewProjector(lineNames []string) *DerivedViewProjector {
	lines := make(map[string]struct{}, len(lineNames))
	for _, name := range lineNames {
		lines[name] = struct{}{}
	}
	return &DerivedViewProjector{
		lines: lines,
		Now:   time.Now,
	}
}

// Project keeps the report's corridor entries in report order, never returning an empty table
func (p *DerivedViewProjector) Project(report []entities.LineStatus) []entities.LineStatus {
	var view []entities.LineStatus
	for _, entry := range report {
		if _, ok := p.lines[entry.LineName]; ok {
			view = append(view, entry)
		}
	}
	if len(view) == 0 {
		return []entities.LineStatus{entities.FallbackStatus(p.Now())}
	}
	return view
}
