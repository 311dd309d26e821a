package usecase

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"sort"

	"go.ngs.io/tidewatch/internal/adapter/store"
	"go.ngs.io/tidewatch/internal/domain"
)

// VerifyReport compares interpolated table levels with a station's fixtures.
type VerifyReport struct {
	Station           StationSummary `json:"station"`
	Pairs             int            `json:"pairs"`
	MeanErrorM        float64        `json:"mean_error_m"`          // Mean of table minus fixture.
	RMSEM             float64        `json:"rmse_m"`                // RMSE around the mean.
	MaxAbsErrorM      float64        `json:"max_abs_error_m"`       // Worst interpolated level.
	PredictMaxErrorM  float64        `json:"predict_max_abs_error"` // Worst direct prediction.
	DatasetMeanErrorM float64        `json:"dataset_mean_error_m"`
	ToleranceM        float64        `json:"tolerance_m"`
	Failures          int            `json:"failures"`
	Passed            bool           `json:"passed"`
}

// Verify checks a station against its fixtures. Every fixture level must be
// within domain.MaxTideError of the level interpolated from a table
// populated around the fixture time.
func (s *TideService) Verify(name string, year int) (*VerifyReport, error) {
	st, err := s.find(name, year)
	if err != nil {
		return nil, err
	}
	if s.fixtures == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoFixtures, st.Name)
	}
	fixtures, err := s.fixtures.LoadFixtures(st.Name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrNoFixtures, st.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures for %s: %w", st.Name, err)
	}

	// Walk the fixtures in time order so nearby ones share a table.
	sorted := make([]store.Fixture, len(fixtures))
	copy(sorted, fixtures)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	report := &VerifyReport{
		Station:           summarize(st),
		Pairs:             len(sorted),
		DatasetMeanErrorM: st.Harmonic.MeanError,
		ToleranceM:        domain.MaxTideError,
	}
	diffs := make([]float64, 0, len(sorted))
	var table domain.TideTable
	for _, f := range sorted {
		s.populate(&table, st, f.Time, 0, 0)
		level, err := table.LevelAt(f.Time)
		if err != nil {
			return nil, fmt.Errorf("fixture at %s: %w", f.Time, err)
		}
		d := level - f.Level
		diffs = append(diffs, d)
		report.MaxAbsErrorM = math.Max(report.MaxAbsErrorM, math.Abs(d))
		if math.Abs(d) >= domain.MaxTideError {
			report.Failures++
		}

		direct := domain.Predict(f.Time, st, domain.Height)
		report.PredictMaxErrorM = math.Max(report.PredictMaxErrorM, math.Abs(direct-f.Level))
	}
	report.MeanErrorM, report.RMSEM = calculateStats(diffs)
	report.Passed = report.Failures == 0
	return report, nil
}

// calculateStats calculates mean and RMSE around mean.
func calculateStats(diffs []float64) (mean, rmse float64) {
	if len(diffs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, d := range diffs {
		sum += d
	}
	mean = sum / float64(len(diffs))

	var sse float64
	for _, d := range diffs {
		dd := d - mean
		sse += dd * dd
	}
	rmse = math.Sqrt(sse / float64(len(diffs)))
	return mean, rmse
}
