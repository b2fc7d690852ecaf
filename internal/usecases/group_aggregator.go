package usecases

import (
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
)

// GroupAggregator applies cross-tier precedence to a cycle's classified lines
type GroupAggregator struct {
	Catalog entities.RouteCatalog
	Now     func() time.Time
}

// NewGroupAggregator creates an aggregator over the given catalog
func NewGroupAggregator(catalog entities.RouteCatalog) *GroupAggregator {
	return &GroupAggregator{
		Catalog: catalog,
		Now:     time.Now,
	}
}

// Aggregate returns the published report for one complete cycle.
// Outcomes must be in catalog order; normal and fetch-failed lines never appear in the result.
func (a *GroupAggregator) Aggregate(outcomes []entities.LineOutcome) []entities.LineStatus {
	byTier := make(map[string][]entities.LineStatus)
	var others []entities.LineStatus

	for _, outcome := range outcomes {
		if !outcome.Status.StatusKind.IsDisruption() {
			continue
		}
		tier := outcome.Route.TierOf()
		if a.Catalog.IsPriorityTier(tier) {
			byTier[tier] = append(byTier[tier], outcome.Status)
		} else {
			others = append(others, outcome.Status)
		}
	}

	for _, tier := range a.Catalog.PriorityTiers {
		if entries := byTier[tier]; len(entries) > 0 {
			return entries
		}
	}
	if len(others) > 0 {
		return others
	}
	return []entities.LineStatus{entities.FallbackStatus(a.Now())}
}
