package usecase

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/tidewatch/internal/adapter/store"
	"go.ngs.io/tidewatch/internal/domain"
)

// MaxDays is the largest number of consecutive days one table request may return.
const MaxDays = 14

var (
	// ErrStationNotFound is returned when no station matches a query.
	ErrStationNotFound = errors.New("station not found")
	// ErrNoFixtures is returned when a station has no fixture file.
	ErrNoFixtures = errors.New("no fixtures for station")
)

// PopulateObserver is told how each table population was served.
type PopulateObserver interface {
	ObservePopulate(station string, outcome domain.PopulateOutcome)
}

// TideService answers station, table and verification queries over a registry.
type TideService struct {
	registry *domain.Registry
	fixtures store.FixtureLoader
	observer PopulateObserver
	now      func() time.Time
}

// NewTideService creates a new tide service. fixtures and observer may be nil.
func NewTideService(registry *domain.Registry, fixtures store.FixtureLoader, observer PopulateObserver) *TideService {
	return &TideService{
		registry: registry,
		fixtures: fixtures,
		observer: observer,
		now:      time.Now,
	}
}

// TableRequest encapsulates a tide table request.
type TableRequest struct {
	Station string
	Year    int       // Optional year hint for the station lookup.
	Time    time.Time // Zero means now.
	TZHours int
	TZMins  int
	Days    int // Consecutive days from Time's local day; 0 means 1.
}

// Validate checks if the request is valid.
func (r *TableRequest) Validate() error {
	if strings.TrimSpace(r.Station) == "" {
		return fmt.Errorf("station must be provided")
	}
	if r.TZHours < -14 || r.TZHours > 14 {
		return fmt.Errorf("timezone hours must be between -14 and 14")
	}
	if r.TZMins <= -60 || r.TZMins >= 60 {
		return fmt.Errorf("timezone minutes must be between -59 and 59")
	}
	if r.TZHours*r.TZMins < 0 {
		return fmt.Errorf("timezone hours and minutes must have the same sign")
	}
	if r.Days < 0 || r.Days > MaxDays {
		return fmt.Errorf("days must be between 0 and %d (0 means 1)", MaxDays)
	}
	return nil
}

// StationSummary describes a station.
type StationSummary struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	FirstYear     int     `json:"first_year"`
	LastYear      int     `json:"last_year"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Constituents  int     `json:"constituents"`
	MeanErrorM    float64 `json:"mean_error_m"`
	DistanceKm    float64 `json:"distance_km,omitempty"`
	ReferenceName string  `json:"reference,omitempty"`
}

// ConstituentInfo is one dequantized constituent of a station.
type ConstituentInfo struct {
	Name          string  `json:"name"`
	SpeedDegPerHr float64 `json:"speed_deg_per_hr"`
	AmplitudeM    float64 `json:"amplitude_m"`
	PhaseDeg      float64 `json:"phase_deg"`
}

// StationDetail is a station with the constituents of one year.
type StationDetail struct {
	StationSummary
	Year         int               `json:"year"`
	Constituents []ConstituentInfo `json:"constituents"`
}

// LevelPoint represents a single hourly level.
type LevelPoint struct {
	Time   string  `json:"time"`
	LevelM float64 `json:"level_m"`
}

// EventPoint represents a high or low water.
type EventPoint struct {
	Kind       string  `json:"kind"`
	Time       string  `json:"time"`
	LevelM     float64 `json:"level_m"`
	NeapSpring float64 `json:"neap_spring"`
}

// DayResponse holds one local day of a table.
type DayResponse struct {
	Date   string       `json:"date"`
	Levels []LevelPoint `json:"levels"`
	Events []EventPoint `json:"events"`
	LowM   *float64     `json:"low_m,omitempty"`
	HighM  *float64     `json:"high_m,omitempty"`
}

// TableResponse contains the state of the tide at a time and the days around it.
type TableResponse struct {
	Station      StationSummary `json:"station"`
	Timezone     string         `json:"timezone"`
	Time         string         `json:"time"`
	LevelM       *float64       `json:"level_m"`
	RateMPerHour *float64       `json:"rate_m_per_hour"`
	Previous     *EventPoint    `json:"previous,omitempty"`
	Next         *EventPoint    `json:"next,omitempty"`
	Days         []DayResponse  `json:"days"`
}

// Stations lists every station in registry order.
func (s *TideService) Stations() []StationSummary {
	stations := s.registry.Stations()
	out := make([]StationSummary, len(stations))
	for i, st := range stations {
		out[i] = summarize(st)
	}
	return out
}

// Station returns a station with the constituents used in year, or in its
// first year when year is 0.
func (s *TideService) Station(name string, year int) (*StationDetail, error) {
	st, err := s.find(name, year)
	if err != nil {
		return nil, err
	}
	h := st.Harmonic
	if year == 0 {
		year = h.BaseYear
	}
	bucket := h.YearBucket(time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC))
	names := h.ConstituentNames()

	detail := &StationDetail{
		StationSummary: summarize(st),
		Year:           h.BaseYear + bucket,
		Constituents:   make([]ConstituentInfo, h.NConstituents),
	}
	for i := range detail.Constituents {
		detail.Constituents[i] = ConstituentInfo{
			Name:          names[i],
			SpeedDegPerHr: roundToDecimal(domain.RadPerSecondToDegPerHour(h.Speed(bucket, i)), 7),
			AmplitudeM:    roundToDecimal(h.Amplitude(bucket, i), 4),
			PhaseDeg:      roundToDecimal(domain.Rad2Deg(h.Phase(bucket, i)), 2),
		}
	}
	return detail, nil
}

// Nearest returns the station closest to a location.
func (s *TideService) Nearest(lat, lon float64) (*StationSummary, error) {
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180")
	}
	st, dist := s.registry.Nearest(lat, lon)
	if st == nil {
		return nil, ErrStationNotFound
	}
	summary := summarize(st)
	summary.DistanceKm = roundToDecimal(dist, 1)
	return &summary, nil
}

// Table populates a tide table for the request and reports the tide at the
// requested time plus each requested day. Consecutive days reuse the same
// table, so each one after the first only computes a single new day.
func (s *TideService) Table(req TableRequest) (*TableResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	st, err := s.find(req.Station, req.Year)
	if err != nil {
		return nil, err
	}
	at := req.Time
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()
	days := req.Days
	if days == 0 {
		days = 1
	}

	var table domain.TideTable
	s.populate(&table, st, at, req.TZHours, req.TZMins)

	resp := &TableResponse{
		Station:  summarize(st),
		Timezone: FormatTZ(req.TZHours, req.TZMins),
		Time:     at.Format(time.RFC3339),
		Days:     make([]DayResponse, 0, days),
	}
	if v, err := table.LevelAt(at); err == nil {
		v = roundToDecimal(v, 3)
		resp.LevelM = &v
	}
	if v, err := table.RateAt(at); err == nil {
		v = roundToDecimal(v, 3)
		resp.RateMPerHour = &v
	}
	prev, next := table.EventsNear(at)
	resp.Previous = eventPoint(prev)
	resp.Next = eventPoint(next)

	offset := time.Duration(req.TZHours)*time.Hour + time.Duration(req.TZMins)*time.Minute
	for d := 0; d < days; d++ {
		if d > 0 {
			s.populate(&table, st, at.Add(time.Duration(d)*24*time.Hour), req.TZHours, req.TZMins)
		}
		resp.Days = append(resp.Days, dayResponse(&table, offset))
	}
	return resp, nil
}

func (s *TideService) populate(t *domain.TideTable, st *domain.Station, at time.Time, tzHours, tzMins int) {
	outcome := t.Populate(st, at, tzHours, tzMins)
	if s.observer != nil {
		s.observer.ObservePopulate(st.Name, outcome)
	}
}

func (s *TideService) find(name string, year int) (*domain.Station, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("station must be provided")
	}
	st := s.registry.Find(name, year)
	if st == nil {
		return nil, fmt.Errorf("%w: %q", ErrStationNotFound, name)
	}
	return st, nil
}

// dayResponse renders the centre day of a table. The day is labelled with
// the UTC date its base time was derived from.
func dayResponse(t *domain.TideTable, offset time.Duration) DayResponse {
	day := DayResponse{
		Date:   t.BaseTime.Add(-offset).Format(time.DateOnly),
		Levels: make([]LevelPoint, domain.HoursPerDay),
	}
	for h := 0; h < domain.HoursPerDay; h++ {
		i := domain.HoursPerDay + h
		day.Levels[h] = LevelPoint{
			Time:   t.HourTime(i).Format(time.RFC3339),
			LevelM: roundToDecimal(t.Levels[i], 3),
		}
	}
	for _, ev := range t.Events[1].Events() {
		day.Events = append(day.Events, *eventPoint(&ev))
	}
	if low, high, ok := t.DayRange(1); ok {
		if !math.IsNaN(low) {
			low = roundToDecimal(low, 3)
			day.LowM = &low
		}
		if !math.IsNaN(high) {
			high = roundToDecimal(high, 3)
			day.HighM = &high
		}
	}
	return day
}

func eventPoint(ev *domain.TidalEvent) *EventPoint {
	if ev == nil {
		return nil
	}
	return &EventPoint{
		Kind:       ev.Kind.String(),
		Time:       ev.Time.Format(time.RFC3339),
		LevelM:     roundToDecimal(ev.Level, 3),
		NeapSpring: roundToDecimal(ev.NeapSpring, 2),
	}
}

func summarize(st *domain.Station) StationSummary {
	first, last := st.YearRange()
	lat, lon := st.Location()
	summary := StationSummary{
		Name:         st.Name,
		Type:         st.Type.String(),
		FirstYear:    first,
		LastYear:     last,
		Lat:          lat,
		Lon:          lon,
		Constituents: st.Harmonic.NConstituents,
		MeanErrorM:   st.Harmonic.MeanError,
	}
	if st.Type == domain.StationReference {
		summary.ReferenceName = st.Harmonic.Name
	}
	return summary
}

// ParseTZ parses a UTC offset such as "+01:00", "-0330", "Z" or "".
// Both returned parts carry the sign of the offset.
func ParseTZ(s string) (hours, mins int, err error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "Z" || strings.EqualFold(s, "UTC") {
		return 0, 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, 0, fmt.Errorf("invalid timezone %q: expected ±HH:MM", s)
	}
	hh, mm, found := strings.Cut(s, ":")
	if !found && len(s) == 4 {
		hh, mm = s[:2], s[2:]
	}
	hours, err = strconv.Atoi(hh)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid timezone hours %q: %w", hh, err)
	}
	if mm != "" {
		mins, err = strconv.Atoi(mm)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid timezone minutes %q: %w", mm, err)
		}
	}
	if hours < 0 || hours > 14 || mins < 0 || mins > 59 {
		return 0, 0, fmt.Errorf("timezone %q out of range", s)
	}
	return sign * hours, sign * mins, nil
}

// FormatTZ is the inverse of ParseTZ.
func FormatTZ(hours, mins int) string {
	sign := '+'
	if hours < 0 || mins < 0 {
		sign = '-'
	}
	return fmt.Sprintf("%c%02d:%02d", sign, abs(hours), abs(mins))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// roundToDecimal rounds to the given number of decimal places.
func roundToDecimal(val float64, precision int) float64 {
	multiplier := math.Pow(10, float64(precision))
	return math.Round(val*multiplier) / multiplier
}
