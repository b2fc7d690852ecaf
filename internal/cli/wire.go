package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/abelzeko/transit-board/internal/config"
	"github.com/abelzeko/transit-board/internal/integration"
	"github.com/abelzeko/transit-board/internal/repository"
	"github.com/abelzeko/transit-board/internal/usecases"
	"github.com/spf13/viper"
)

// app holds the wired components of one process
type app struct {
	repo       *repository.SQLiteSnapshotRepository
	bus        *usecases.BusUseCase
	disruption *usecases.DisruptionUseCase
}

func (a *app) Close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			log.Printf("Warning: failed to close repository: %v", err)
		}
	}
}

// snapshots returns the repository as an interface, nil when storage is disabled
func (a *app) snapshots() repository.SnapshotRepository {
	if a.repo == nil {
		return nil
	}
	return a.repo
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{}

	for _, path := range []string{cfg.Bus.Output, cfg.Disruption.Output, cfg.Disruption.Corridor.Output, cfg.Operator.File} {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if cfg.Storage.Enabled {
		repo, err := repository.NewSQLiteSnapshotRepository(cfg.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize repository: %w", err)
		}
		a.repo = repo
	}

	fetcher := integration.NewDocumentFetcher(integration.FetcherConfig{
		Timeout:           cfg.HTTP.Timeout,
		UserAgent:         cfg.HTTP.UserAgent,
		MaxBytes:          cfg.HTTP.MaxBytes,
		MaxRetries:        cfg.HTTP.MaxRetries,
		RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
		Burst:             cfg.HTTP.Burst,
		RespectRobots:     cfg.HTTP.RespectRobots,
	})
	scraper := integration.NewTransitScraper(fetcher)

	reconstructor := usecases.NewDepartureReconstructor(cfg.Bus.TransitMinutes)
	reconstructor.Verbose = cfg.Verbose

	a.bus = usecases.NewBusUseCase(scraper, reconstructor, repository.TableWriter{}, a.snapshots(),
		cfg.Bus.URL, cfg.Bus.Output)

	catalog := cfg.Disruption.Catalog()
	log.Printf("Monitoring %d lines, priority tiers %v", len(catalog.Routes), catalog.PriorityTiers)
	a.disruption = usecases.NewDisruptionUseCase(scraper, catalog,
		usecases.NewDerivedViewProjector(cfg.Disruption.Corridor.Lines),
		repository.TableWriter{BOM: true}, a.snapshots(),
		usecases.DisruptionPaths{Report: cfg.Disruption.Output, Corridor: cfg.Disruption.Corridor.Output},
		cfg.Disruption.Concurrency)

	return a, nil
}

func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}
