package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"go.ngs.io/tidewatch/internal/usecase"
)

var tableCmd = &cobra.Command{
	Use:   "table <station>",
	Short: "Print the tide table for a station",
	Long: `Prints the level and rate at a time, the surrounding high and low
waters, and the hourly levels of each requested local day.`,
	Args: cobra.ExactArgs(1),
	RunE: runTable,
}

func init() {
	tableCmd.Flags().Int("year", 0, "prefer stations whose data covers this year")
	tableCmd.Flags().String("at", "", "RFC3339 time to report on (default is now)")
	tableCmd.Flags().Int("days", 1, fmt.Sprintf("number of days to print (1-%d)", usecase.MaxDays))
}

func runTable(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	year, _ := cmd.Flags().GetInt("year")
	days, _ := cmd.Flags().GetInt("days")
	at, _ := cmd.Flags().GetString("at")

	req := usecase.TableRequest{Station: args[0], Year: year, Days: days}
	if at != "" {
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at (expected RFC3339): %w", err)
		}
		req.Time = t
	}
	req.TZHours, req.TZMins, err = usecase.ParseTZ(viper.GetString("tz"))
	if err != nil {
		return err
	}

	resp, err := e.tides.Table(req)
	if err != nil {
		return err
	}
	e.logger.Debug("table computed",
		zap.String("station", resp.Station.Name),
		zap.String("time", resp.Time),
		zap.Int("days", len(resp.Days)),
	)
	fmt.Fprint(cmd.OutOrStdout(), renderTable(resp))
	return nil
}
