// Package store defines how harmonic datasets and their fixtures are loaded.
package store

import (
	"regexp"
	"strings"
	"time"

	"go.ngs.io/tidewatch/internal/domain"
)

// StationLoader is the interface for loading a harmonic dataset.
type StationLoader interface {
	// LoadStations returns every station in dataset order.
	LoadStations() ([]*domain.Station, error)
}

// FixtureLoader is the interface for loading known time/level pairs.
type FixtureLoader interface {
	// LoadFixtures returns the fixtures recorded for a station name.
	LoadFixtures(stationName string) ([]Fixture, error)
}

// Fixture is a level the dataset producer predicted for a station.
type Fixture struct {
	Time  time.Time
	Level float64 // Meters.
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a station name into a file name stem, e.g.
// "Millport, Scotland" becomes "millport-scotland".
func Slug(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}

// Merge concatenates the stations of several loaders in order.
func Merge(loaders ...StationLoader) ([]*domain.Station, error) {
	var all []*domain.Station
	for _, l := range loaders {
		stations, err := l.LoadStations()
		if err != nil {
			return nil, err
		}
		all = append(all, stations...)
	}
	return all, nil
}
