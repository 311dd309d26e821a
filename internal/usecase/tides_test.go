package usecase

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go.ngs.io/tidewatch/internal/adapter/store/csv"
	"go.ngs.io/tidewatch/internal/adapter/store/jsonfile"
	"go.ngs.io/tidewatch/internal/dataset"
	"go.ngs.io/tidewatch/internal/domain"
)

type recordingObserver struct {
	outcomes []domain.PopulateOutcome
}

func (r *recordingObserver) ObservePopulate(_ string, outcome domain.PopulateOutcome) {
	r.outcomes = append(r.outcomes, outcome)
}

func newTestService(t *testing.T) (*TideService, *recordingObserver) {
	t.Helper()
	stations, err := jsonfile.NewStore(dataset.FS(), dataset.StationsFile).LoadStations()
	if err != nil {
		t.Fatalf("Failed to load stations: %v", err)
	}
	obs := &recordingObserver{}
	svc := NewTideService(domain.NewRegistry(stations), csv.NewFixtureStore(dataset.FS(), dataset.FixturesDir), obs)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, obs
}

func TestTableRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TableRequest
		wantErr bool
		errMsg  string
	}{
		{"valid", TableRequest{Station: "Millport", TZHours: 1}, false, ""},
		{"valid negative offset", TableRequest{Station: "Millport", TZHours: -3, TZMins: -30, Days: 7}, false, ""},
		{"zero days means one", TableRequest{Station: "M", Days: 0}, false, ""},
		{"missing station", TableRequest{Station: "  "}, true, "station"},
		{"hours too large", TableRequest{Station: "M", TZHours: 15}, true, "hours"},
		{"minutes too large", TableRequest{Station: "M", TZMins: 60}, true, "minutes"},
		{"mixed signs", TableRequest{Station: "M", TZHours: 3, TZMins: -30}, true, "same sign"},
		{"too many days", TableRequest{Station: "M", Days: MaxDays + 1}, true, "between 0 and 14 (0 means 1)"},
		{"negative days", TableRequest{Station: "M", Days: -1}, true, "between 0 and 14 (0 means 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error: %v, got %v", tt.wantErr, err)
			}
			if err != nil && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %q", tt.errMsg, err)
			}
		})
	}
}

func TestTable(t *testing.T) {
	svc, obs := newTestService(t)
	at := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

	resp, err := svc.Table(TableRequest{Station: "millport", Time: at, TZHours: 1, Days: 3})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	if resp.Station.Name != "Millport, Scotland" || resp.Timezone != "+01:00" {
		t.Errorf("unexpected station %q or zone %q", resp.Station.Name, resp.Timezone)
	}
	if resp.Time != "2025-06-01T09:30:00Z" {
		t.Errorf("unexpected time %q", resp.Time)
	}
	if resp.LevelM == nil || resp.RateMPerHour == nil {
		t.Fatal("expected level and rate")
	}
	st := svc.registry.Find("millport", 0)
	if want := domain.Predict(at, st, domain.Height); math.Abs(*resp.LevelM-want) > domain.MaxTideError {
		t.Errorf("expected level near %.3f, got %.3f", want, *resp.LevelM)
	}
	if resp.Previous == nil || resp.Next == nil {
		t.Fatal("expected previous and next events")
	}
	if resp.Previous.Kind == resp.Next.Kind {
		t.Errorf("previous and next are both %s", resp.Next.Kind)
	}

	wantDates := []string{"2025-06-01", "2025-06-02", "2025-06-03"}
	if len(resp.Days) != len(wantDates) {
		t.Fatalf("expected %d days, got %d", len(wantDates), len(resp.Days))
	}
	for i, day := range resp.Days {
		if day.Date != wantDates[i] {
			t.Errorf("day %d: expected %s, got %s", i, wantDates[i], day.Date)
		}
		if len(day.Levels) != domain.HoursPerDay {
			t.Errorf("day %d: expected 24 levels, got %d", i, len(day.Levels))
		}
		// UTC midnight moved by +01:00.
		if want := wantDates[i] + "T01:00:00Z"; day.Levels[0].Time != want {
			t.Errorf("day %d: first level at %s, expected %s", i, day.Levels[0].Time, want)
		}
		if len(day.Events) < 3 {
			t.Errorf("day %d: expected at least 3 events, got %d", i, len(day.Events))
		}
		if day.LowM == nil || day.HighM == nil || *day.LowM >= *day.HighM {
			t.Errorf("day %d: expected low below high", i)
		}
	}

	want := []domain.PopulateOutcome{domain.FullRecompute, domain.ShiftForward, domain.ShiftForward}
	if diff := cmp.Diff(want, obs.outcomes); diff != "" {
		t.Errorf("populate outcomes (-want +got):\n%s", diff)
	}
}

func TestTable_DefaultsToNow(t *testing.T) {
	svc, _ := newTestService(t)

	resp, err := svc.Table(TableRequest{Station: "CLOCK"})
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if resp.Time != "2025-06-01T12:00:00Z" {
		t.Errorf("expected the service clock's time, got %s", resp.Time)
	}
	if len(resp.Days) != 1 || resp.Days[0].Date != "2025-06-01" {
		t.Errorf("expected one day for 2025-06-01, got %+v", resp.Days)
	}
}

func TestTable_Errors(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Table(TableRequest{Station: "Atlantis"}); !errors.Is(err, ErrStationNotFound) {
		t.Errorf("unknown station: expected ErrStationNotFound, got %v", err)
	}
	if _, err := svc.Table(TableRequest{}); err == nil {
		t.Error("missing station: expected error")
	}
	if _, err := svc.Table(TableRequest{Station: "CLOCK", Days: 100}); err == nil || errors.Is(err, ErrStationNotFound) {
		t.Errorf("too many days: expected validation error, got %v", err)
	}
}

func TestStations(t *testing.T) {
	svc, _ := newTestService(t)

	got := svc.Stations()
	want := []StationSummary{
		{Name: "Millport, Scotland", Type: "harmonic", FirstYear: 2023, LastYear: 2027, Lat: 55.7496, Lon: -4.9058, Constituents: 40},
		{Name: "CLOCK", Type: "clock", FirstYear: 2000, LastYear: 2000, Constituents: 1},
	}
	ignoreErr := cmp.Comparer(func(a, b StationSummary) bool {
		a.MeanErrorM, b.MeanErrorM = 0, 0
		return a == b
	})
	if diff := cmp.Diff(want, got, ignoreErr); diff != "" {
		t.Errorf("stations (-want +got):\n%s", diff)
	}
}

func TestStation(t *testing.T) {
	svc, _ := newTestService(t)

	detail, err := svc.Station("Millport", 2030)
	if err != nil {
		t.Fatalf("Station: %v", err)
	}
	if detail.Year != 2027 {
		t.Errorf("expected the last covered year, got %d", detail.Year)
	}
	if len(detail.Constituents) != 40 {
		t.Fatalf("expected 40 constituents, got %d", len(detail.Constituents))
	}
	seen := map[string]bool{}
	for _, c := range detail.Constituents {
		seen[c.Name] = true
		if c.AmplitudeM < 0 || c.AmplitudeM > domain.MaxTideAmp {
			t.Errorf("%s: amplitude %v out of range", c.Name, c.AmplitudeM)
		}
	}
	for _, name := range []string{"M2", "S2", "K1", "O1"} {
		if !seen[name] {
			t.Errorf("expected constituent %s", name)
		}
	}

	clock, err := svc.Station("clock", 0)
	if err != nil {
		t.Fatalf("Station: %v", err)
	}
	if clock.Year != 2000 || len(clock.Constituents) != 1 {
		t.Errorf("unexpected clock detail: %+v", clock)
	}

	if _, err := svc.Station("", 0); err == nil {
		t.Error("empty name: expected error")
	}
}

func TestNearest(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Nearest(55.8, -4.9)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got.Name != "Millport, Scotland" {
		t.Errorf("expected Millport, got %q", got.Name)
	}
	if got.DistanceKm < 5 || got.DistanceKm > 6 {
		t.Errorf("expected about 5.6 km, got %v", got.DistanceKm)
	}

	for _, c := range [][2]float64{{91, 0}, {0, -181}} {
		if _, err := svc.Nearest(c[0], c[1]); err == nil {
			t.Errorf("%v: expected range error", c)
		}
	}
}

func TestParseTZ(t *testing.T) {
	tests := []struct {
		in        string
		h, m      int
		wantErr   bool
		formatted string
	}{
		{"", 0, 0, false, "+00:00"},
		{"Z", 0, 0, false, "+00:00"},
		{"utc", 0, 0, false, "+00:00"},
		{"+01:00", 1, 0, false, "+01:00"},
		{"-03:30", -3, -30, false, "-03:30"},
		{"+0545", 5, 45, false, "+05:45"},
		{"-7", -7, 0, false, "-07:00"},
		{"-00:30", 0, -30, false, "-00:30"},
		{"01:00", 0, 0, true, ""},
		{"+15:00", 0, 0, true, ""},
		{"+01:60", 0, 0, true, ""},
		{"+aa:00", 0, 0, true, ""},
		{"+01:-5", 0, 0, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			h, m, err := ParseTZ(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error: %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if h != tt.h || m != tt.m {
				t.Errorf("expected %d:%d, got %d:%d", tt.h, tt.m, h, m)
			}
			if got := FormatTZ(h, m); got != tt.formatted {
				t.Errorf("FormatTZ: expected %q, got %q", tt.formatted, got)
			}
		})
	}
}
