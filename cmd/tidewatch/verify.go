package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <station>",
	Short: "Check a station's predictions against its fixtures",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		defer func() { _ = e.logger.Sync() }()

		year, _ := cmd.Flags().GetInt("year")
		report, err := e.tides.Verify(args[0], year)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), renderVerify(report))
		if !report.Passed {
			e.logger.Warn("verification failed",
				zap.String("station", report.Station.Name),
				zap.Int("failures", report.Failures),
				zap.Float64("max_abs_error_m", report.MaxAbsErrorM),
			)
			return fmt.Errorf("%s: %d of %d fixtures outside %.2fm", report.Station.Name, report.Failures, report.Pairs, report.ToleranceM)
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().Int("year", 0, "prefer stations whose data covers this year")
}
