// Package integration handles external service interactions
package integration

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/abelzeko/transit-board/internal/entities"
)

// Fetcher retrieves and parses a page
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Document, error)
}

// TransitScraper turns operator pages into fragment sequences
type TransitScraper struct {
	fetcher Fetcher
}

// NewTransitScraper creates a new transit page scraper
func NewTransitScraper(fetcher Fetcher) *TransitScraper {
	return &TransitScraper{fetcher: fetcher}
}

// FetchDepartureGroups retrieves a bus location page and extracts its prediction fragments.
// A page with no list items yields no groups and no error.
func (ts *TransitScraper) FetchDepartureGroups(ctx context.Context, url string) ([]entities.FragmentGroup, error) {
	log.Printf("Sending HTTP request to bus location page")
	doc, err := ts.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("Error fetching bus location page: %v", err)
		return nil, err
	}
	log.Printf("Parsing bus location page (encoding: %s)", doc.Encoding)

	groups, err := ExtractPredictionGroups(doc.Document)
	if errors.Is(err, ErrNoFragments) {
		log.Printf("No bus list items on page, treating as no service")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("extract prediction fragments: %w", err)
	}

	fragmentCount := 0
	for _, g := range groups {
		fragmentCount += len(g.Fragments)
	}
	log.Printf("Extracted %d prediction fragments from %d list items", fragmentCount, len(groups))
	return groups, nil
}

// FetchLineNotice retrieves a line's status page and returns its notice text.
// A page without any trouble notice yields the canonical normal-operation text.
func (ts *TransitScraper) FetchLineNotice(ctx context.Context, route entities.Route) (string, error) {
	doc, err := ts.fetcher.Fetch(ctx, route.URL)
	if err != nil {
		return "", err
	}

	fragment, err := ExtractDisruptionNotice(doc.Document)
	if errors.Is(err, ErrNoFragments) {
		return entities.NormalOperationText, nil
	}
	if err != nil {
		return "", fmt.Errorf("extract notice for %s: %w", route.LineName, err)
	}
	return fragment.Text, nil
}
