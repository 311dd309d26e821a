// Package dataset embeds the default harmonic dataset and its fixtures.
package dataset

import (
	"embed"
	"io/fs"
)

// StationsFile is the name of the station list inside FS.
const StationsFile = "stations.json"

// FixturesDir is the directory of per-station fixture CSVs inside FS.
const FixturesDir = "fixtures"

//go:embed stations.json fixtures/*.csv
var files embed.FS

// FS returns the embedded dataset.
func FS() fs.FS {
	return files
}
