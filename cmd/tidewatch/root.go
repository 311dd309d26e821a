package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"go.ngs.io/tidewatch/internal/adapter/store/catalog"
	"go.ngs.io/tidewatch/internal/metrics"
	"go.ngs.io/tidewatch/internal/usecase"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tidewatch",
	Short: "Tide tables from harmonic station data",
	Long: `Predicts tide levels, high and low waters for the stations in the
tidewatch dataset, and checks stations against their recorded fixtures.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tidewatch.yaml)")
	flags.String("data-dir", "", "directory with stations.json and fixtures/ (default is the embedded dataset)")
	flags.String("netcdf-dir", "", "directory of extra *.nc station files")
	flags.String("tz", "", "UTC offset for tables, e.g. +01:00")
	flags.Bool("debug", false, "log debug output to stderr")

	for _, key := range []string{"data-dir", "netcdf-dir", "tz", "debug"} {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(key)))
	}

	rootCmd.AddCommand(stationsCmd, tableCmd, verifyCmd, exportCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".tidewatch" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tidewatch")
	}

	viper.SetEnvPrefix("tidewatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger returns a development logger with --debug and a quiet
// production logger otherwise.
func newLogger() (*zap.Logger, error) {
	if viper.GetBool("debug") {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// env is what every subcommand needs.
type env struct {
	logger *zap.Logger
	cat    *catalog.Catalog
	tides  *usecase.TideService
}

func loadEnv() (*env, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	cfg := catalog.Config{
		DataDir:   viper.GetString("data-dir"),
		NetCDFDir: viper.GetString("netcdf-dir"),
	}
	cat, err := catalog.Open(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded",
		zap.String("data_dir", cfg.DataDir),
		zap.String("netcdf_dir", cfg.NetCDFDir),
		zap.Int("stations", cat.Registry.Len()),
	)
	return &env{
		logger: logger,
		cat:    cat,
		tides:  usecase.NewTideService(cat.Registry, cat.Fixtures, metrics.Recorder{}),
	}, nil
}
