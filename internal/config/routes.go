package config

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abelzeko/transit-board/internal/entities"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Accepted header names of the routes file
var (
	lineNameColumns = []string{"路線名", "line_name"}
	urlColumns      = []string{"URL", "url"}
	tierColumns     = []string{"グループ", "tier"}
)

// LoadRoutesCSV reads routes in file order. A leading byte order mark is ignored.
func LoadRoutesCSV(path string) ([]entities.Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer f.Close()

	return ReadRoutes(f)
}

// ReadRoutes parses a routes table with columns 路線名, URL and an optional グループ
func ReadRoutes(r io.Reader) ([]entities.Route, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("routes file: read header: %w", err)
	}

	nameIdx := columnIndex(header, lineNameColumns)
	urlIdx := columnIndex(header, urlColumns)
	tierIdx := columnIndex(header, tierColumns)
	if nameIdx < 0 || urlIdx < 0 {
		return nil, fmt.Errorf("routes file: header must contain 路線名 and URL, got %v", header)
	}

	var routes []entities.Route
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("routes file: line %d: %w", line, err)
		}

		name := field(record, nameIdx)
		url := field(record, urlIdx)
		if name == "" && url == "" {
			continue
		}
		if name == "" || url == "" {
			return nil, fmt.Errorf("routes file: line %d: missing line name or URL", line)
		}

		routes = append(routes, entities.Route{
			LineName: name,
			URL:      url,
			Tier:     field(record, tierIdx),
		})
	}

	return routes, nil
}

func columnIndex(header []string, names []string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
