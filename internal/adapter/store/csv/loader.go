// Package csv provides CSV-based fixture loading.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/tidewatch/internal/adapter/store"
)

// FixtureStore provides access to per-station fixture files named
// <slug>.csv, each with a "time,level" header and unix-second times.
type FixtureStore struct {
	fsys fs.FS
	dir  string
}

// NewFixtureStore creates a new CSV-based fixture store.
func NewFixtureStore(fsys fs.FS, dir string) *FixtureStore {
	return &FixtureStore{
		fsys: fsys,
		dir:  dir,
	}
}

// LoadFixtures loads the fixtures for a station.
func (s *FixtureStore) LoadFixtures(stationName string) ([]store.Fixture, error) {
	filename := path.Join(s.dir, store.Slug(stationName)+".csv")

	file, err := s.fsys.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file for station %s: %w", stationName, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	// Read header.
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Validate header.
	expectedHeaders := []string{"time", "level"}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("invalid CSV header: expected %v, got %v", expectedHeaders, header)
	}

	for i, h := range header {
		if h != expectedHeaders[i] {
			return nil, fmt.Errorf("invalid CSV header: expected column %d to be %s, got %s", i, expectedHeaders[i], h)
		}
	}

	// Read data rows.
	fixtures := make([]store.Fixture, 0)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if len(record) != 2 {
			return nil, fmt.Errorf("invalid CSV record: expected 2 columns, got %d", len(record))
		}

		sec, err := strconv.ParseInt(strings.TrimSpace(record[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", record[0], err)
		}

		level, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid level at %d: %w", sec, err)
		}

		fixtures = append(fixtures, store.Fixture{
			Time:  time.Unix(sec, 0).UTC(),
			Level: level,
		})
	}

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixtures found in CSV for station %s", stationName)
	}

	return fixtures, nil
}
