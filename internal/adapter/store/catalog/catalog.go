// Package catalog assembles the station registry and fixtures from the
// configured dataset sources.
package catalog

import (
	"fmt"
	"io/fs"
	"os"

	"go.ngs.io/tidewatch/internal/adapter/store"
	"go.ngs.io/tidewatch/internal/adapter/store/csv"
	"go.ngs.io/tidewatch/internal/adapter/store/jsonfile"
	"go.ngs.io/tidewatch/internal/adapter/store/ncstore"
	"go.ngs.io/tidewatch/internal/dataset"
	"go.ngs.io/tidewatch/internal/domain"
)

// Config names the dataset sources.
type Config struct {
	// DataDir holds stations.json and fixtures/. Empty means the embedded dataset.
	DataDir string
	// NetCDFDir optionally holds extra stations as *.nc files.
	NetCDFDir string
}

// Catalog is a loaded dataset.
type Catalog struct {
	Registry *domain.Registry
	Fixtures store.FixtureLoader
}

// Open loads the JSON stations, then any NetCDF stations, in that order.
func Open(cfg Config) (*Catalog, error) {
	fsys := dataset.FS()
	if cfg.DataDir != "" {
		fsys = os.DirFS(cfg.DataDir)
	}
	return open(fsys, cfg.NetCDFDir)
}

func open(fsys fs.FS, netcdfDir string) (*Catalog, error) {
	loaders := []store.StationLoader{jsonfile.NewStore(fsys, dataset.StationsFile)}
	if netcdfDir != "" {
		loaders = append(loaders, ncstore.NewStore(netcdfDir))
	}

	stations, err := store.Merge(loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	if len(stations) == 0 {
		return nil, fmt.Errorf("dataset contains no stations")
	}

	return &Catalog{
		Registry: domain.NewRegistry(stations),
		Fixtures: csv.NewFixtureStore(fsys, dataset.FixturesDir),
	}, nil
}
