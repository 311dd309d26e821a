package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"go.ngs.io/tidewatch/internal/adapter/store"
	"go.ngs.io/tidewatch/internal/adapter/store/jsonfile"
	"go.ngs.io/tidewatch/internal/adapter/store/ncstore"
	"go.ngs.io/tidewatch/internal/domain"
)

var exportCmd = &cobra.Command{
	Use:   "export [station...]",
	Short: "Write stations as NetCDF files, or as a stations.json",
	Long: `Writes each harmonic or clock station to <out>/<slug>.nc so it can be
loaded again with --netcdf-dir. With --json the selected stations,
reference stations included, are written to <out>/stations.json instead.
A reference station only loads again when the station it borrows from
is in the same file. With no arguments every station is exported.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("out", ".", "output directory")
	exportCmd.Flags().Bool("json", false, "write stations.json instead of NetCDF files")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	out, _ := cmd.Flags().GetString("out")
	asJSON, _ := cmd.Flags().GetBool("json")

	stations := e.cat.Registry.Stations()
	if len(args) > 0 {
		stations = stations[:0:0]
		for _, name := range args {
			st := e.cat.Registry.Find(name, 0)
			if st == nil {
				return fmt.Errorf("station not found: %q", name)
			}
			stations = append(stations, st)
		}
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if asJSON {
		return exportJSON(cmd, filepath.Join(out, "stations.json"), stations)
	}

	for _, st := range stations {
		if st.Type == domain.StationReference {
			e.logger.Warn("skipping reference station", zap.String("station", st.Name))
			continue
		}
		path := filepath.Join(out, store.Slug(st.Name)+".nc")
		if err := ncstore.WriteStation(path, st); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}

func exportJSON(cmd *cobra.Command, path string, stations []*domain.Station) error {
	records := make([]jsonfile.StationRecord, len(stations))
	for i, st := range stations {
		records[i] = jsonfile.Record(st)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stations: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
