package usecases

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/abelzeko/transit-board/internal/repository"
)

// LineNoticeSource yields the notice text shown on a line's status page
type LineNoticeSource interface {
	FetchLineNotice(ctx context.Context, route entities.Route) (string, error)
}

// DisruptionResult is the output of one complete disruption cycle
type DisruptionResult struct {
	Outcomes []entities.LineOutcome
	Report   []entities.LineStatus
	Corridor []entities.LineStatus
}

// DisruptionPaths are the tables replaced by a disruption cycle
type DisruptionPaths struct {
	Report   string
	Corridor string
}

// DisruptionUseCase runs the line disruption pipeline and its corridor view
type DisruptionUseCase struct {
	source      LineNoticeSource
	catalog     entities.RouteCatalog
	aggregator  *GroupAggregator
	projector   *DerivedViewProjector
	writer      TableWriter
	repo        repository.SnapshotRepository
	paths       DisruptionPaths
	concurrency int
}

// NewDisruptionUseCase creates a new disruption use case; repo may be nil
func NewDisruptionUseCase(source LineNoticeSource, catalog entities.RouteCatalog, projector *DerivedViewProjector,
	writer TableWriter, repo repository.SnapshotRepository, paths DisruptionPaths, concurrency int) *DisruptionUseCase {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &DisruptionUseCase{
		source:      source,
		catalog:     catalog,
		aggregator:  NewGroupAggregator(catalog),
		projector:   projector,
		writer:      writer,
		repo:        repo,
		paths:       paths,
		concurrency: concurrency,
	}
}

// Paths returns the tables this use case replaces
func (uc *DisruptionUseCase) Paths() DisruptionPaths {
	return uc.paths
}

// RefreshLineStatus fetches every configured line, aggregates once all have resolved,
// and replaces the report and corridor tables from that same snapshot.
func (uc *DisruptionUseCase) RefreshLineStatus(ctx context.Context) (*DisruptionResult, error) {
	log.Printf("Starting line status refresh for %d lines...", len(uc.catalog.Routes))

	outcomes := uc.collectOutcomes(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("disruption cycle abandoned: %w", err)
	}

	failed := 0
	for _, o := range outcomes {
		if o.Status.StatusKind == entities.StatusFetchFailed {
			failed++
		}
	}
	if failed > 0 {
		log.Printf("Warning: %d of %d lines could not be fetched", failed, len(outcomes))
	}

	result := &DisruptionResult{Outcomes: outcomes}
	result.Report = uc.aggregator.Aggregate(outcomes)
	result.Corridor = uc.projector.Project(result.Report)
	log.Printf("Aggregated %d report entries, %d corridor entries", len(result.Report), len(result.Corridor))

	if err := uc.writer.WriteTable(uc.paths.Report, entities.LineStatusHeader, statusRows(result.Report)); err != nil {
		return nil, fmt.Errorf("failed to write disruption report: %w", err)
	}
	log.Printf("Saved line status report to %s", uc.paths.Report)

	if err := uc.writer.WriteTable(uc.paths.Corridor, entities.LineStatusHeader, statusRows(result.Corridor)); err != nil {
		return nil, fmt.Errorf("failed to write corridor report: %w", err)
	}
	log.Printf("Saved corridor report to %s", uc.paths.Corridor)

	if uc.repo != nil {
		snapshot := repository.DisruptionSnapshot{
			Report:   result.Report,
			Corridor: result.Corridor,
			Outcomes: outcomes,
			At:       time.Now(),
		}
		if err := uc.repo.SaveDisruptionCycle(snapshot); err != nil {
			log.Printf("Warning: failed to store disruption snapshot: %v", err)
		}
	}

	return result, nil
}

// collectOutcomes fetches and classifies every line, returning outcomes in catalog order
func (uc *DisruptionUseCase) collectOutcomes(ctx context.Context) []entities.LineOutcome {
	outcomes := make([]entities.LineOutcome, len(uc.catalog.Routes))
	sem := make(chan struct{}, uc.concurrency)
	var wg sync.WaitGroup

	for i, route := range uc.catalog.Routes {
		wg.Add(1)
		go func(i int, route entities.Route) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = uc.resolveLine(ctx, route)
		}(i, route)
	}

	wg.Wait()
	return outcomes
}

func (uc *DisruptionUseCase) resolveLine(ctx context.Context, route entities.Route) entities.LineOutcome {
	text, err := uc.source.FetchLineNotice(ctx, route)
	if err != nil {
		log.Printf("Error fetching status for %s: %v", route.LineName, err)
		return entities.LineOutcome{
			Route:  route,
			Status: FetchFailedStatus(route, err),
			Err:    err,
		}
	}

	status := ClassifyLine(route, text)
	log.Printf("%s: %s", route.LineName, status.StatusKind.Label())
	return entities.LineOutcome{Route: route, Status: status}
}

func statusRows(entries []entities.LineStatus) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e.Row())
	}
	return rows
}
