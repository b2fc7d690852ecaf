// Package usecases contains the application's business logic
package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/abelzeko/transit-board/internal/entities"
	"github.com/abelzeko/transit-board/internal/repository"
)

// DepartureSource yields the prediction fragments of a bus location page
type DepartureSource interface {
	FetchDepartureGroups(ctx context.Context, url string) ([]entities.FragmentGroup, error)
}

// TableWriter replaces one output table
type TableWriter interface {
	WriteTable(path string, header []string, rows [][]string) error
}

// BusUseCase runs the bus schedule pipeline
type BusUseCase struct {
	source        DepartureSource
	reconstructor *DepartureReconstructor
	writer        TableWriter
	repo          repository.SnapshotRepository
	sourceURL     string
	outputPath    string
}

// NewBusUseCase creates a new bus schedule use case; repo may be nil
func NewBusUseCase(source DepartureSource, reconstructor *DepartureReconstructor, writer TableWriter,
	repo repository.SnapshotRepository, sourceURL, outputPath string) *BusUseCase {
	return &BusUseCase{
		source:        source,
		reconstructor: reconstructor,
		writer:        writer,
		repo:          repo,
		sourceURL:     sourceURL,
		outputPath:    outputPath,
	}
}

// OutputPath is the bus schedule table this use case replaces
func (uc *BusUseCase) OutputPath() string {
	return uc.outputPath
}

// RefreshDepartures fetches the bus page and replaces the schedule table.
// On a fetch failure the previous table is left in place.
func (uc *BusUseCase) RefreshDepartures(ctx context.Context) ([]entities.DepartureRecord, error) {
	log.Println("Starting bus schedule refresh...")

	groups, err := uc.source.FetchDepartureGroups(ctx, uc.sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bus predictions: %w", err)
	}

	records := uc.reconstructor.Reconstruct(groups)
	if len(records) == 0 {
		log.Printf("No departures reconstructed, writing no-service row")
		records = []entities.DepartureRecord{entities.NoServiceRecord}
	} else {
		log.Printf("Reconstructed %d departures", len(records))
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("bus cycle abandoned: %w", err)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.Row())
	}
	if err := uc.writer.WriteTable(uc.outputPath, entities.DepartureHeader, rows); err != nil {
		return nil, fmt.Errorf("failed to write bus schedule: %w", err)
	}
	log.Printf("Saved bus schedule to %s", uc.outputPath)

	if uc.repo != nil {
		if err := uc.repo.SaveDepartures(records, time.Now()); err != nil {
			log.Printf("Warning: failed to store departure snapshot: %v", err)
		}
	}

	return records, nil
}
