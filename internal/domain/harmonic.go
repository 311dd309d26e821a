// Package domain holds the tide prediction core: quantized harmonic models,
// the predictor and event finder, day filling, the 3-day tide table and the
// station registry. It performs no I/O and never blocks.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Dequantization and table constants.
const (
	// MaxTideAmp is the amplitude in meters represented by a raw value of 65535.
	MaxTideAmp = 12.0
	// MaxTidePhase is the phase in radians represented by a raw value of 65535.
	MaxTidePhase = 2 * math.Pi
	// MaxTideError is the acceptance bound, in meters, for fixture comparisons.
	MaxTideError = 0.1
	// MaxConstituents is the largest constituent count a model may carry.
	MaxConstituents = 255

	quantMax = 65535.0
)

// StationType distinguishes harmonic stations from derived ones.
type StationType int

const (
	// StationHarmonic carries its own harmonic model.
	StationHarmonic StationType = iota
	// StationReference borrows another station's model and applies a PortOffset.
	StationReference
	// StationClock is a synthetic single-constituent station.
	StationClock
)

func (t StationType) String() string {
	switch t {
	case StationHarmonic:
		return "harmonic"
	case StationReference:
		return "reference"
	case StationClock:
		return "clock"
	default:
		return fmt.Sprintf("StationType(%d)", int(t))
	}
}

// ParseStationType parses the dataset spelling of a station type.
// An empty string means harmonic.
func ParseStationType(s string) (StationType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "harmonic":
		return StationHarmonic, nil
	case "reference":
		return StationReference, nil
	case "clock":
		return StationClock, nil
	default:
		return 0, fmt.Errorf("unknown station type %q", s)
	}
}

// HarmonicModel is the quantized constituent data for one station.
//
// Amps and Phases are [NYears][NConstituents] flattened: row y holds the
// year bucket BaseYear+y. Speeds (rad/s) is either one row shared by every
// year or a full row per year.
type HarmonicModel struct {
	Name          string
	BaseYear      int
	NYears        int
	NConstituents int
	Lat           float64 // Degrees.
	Lon           float64 // Degrees.
	Offset        float64 // Mean level in meters.
	NeapsRange    float64 // Meters.
	SpringsRange  float64 // Meters.
	MeanError     float64 // Meters, as reported by the dataset producer.
	Speeds        []float64
	Amps          []uint16
	Phases        []uint16
}

// DequantizeAmplitude converts a raw 16-bit amplitude to meters.
func DequantizeAmplitude(raw uint16) float64 {
	return float64(raw) / quantMax * MaxTideAmp
}

// DequantizePhase converts a raw 16-bit phase to radians.
func DequantizePhase(raw uint16) float64 {
	return float64(raw) / quantMax * MaxTidePhase
}

// Speed returns the angular speed of constituent i in the given year bucket, in rad/s.
func (m *HarmonicModel) Speed(year, i int) float64 {
	if len(m.Speeds) == m.NConstituents {
		return m.Speeds[i]
	}
	return m.Speeds[year*m.NConstituents+i]
}

// Amplitude returns the dequantized amplitude of constituent i in meters.
func (m *HarmonicModel) Amplitude(year, i int) float64 {
	return DequantizeAmplitude(m.Amps[year*m.NConstituents+i])
}

// Phase returns the dequantized phase of constituent i in radians.
func (m *HarmonicModel) Phase(year, i int) float64 {
	return DequantizePhase(m.Phases[year*m.NConstituents+i])
}

// YearRange returns the first and last calendar years covered by the model.
func (m *HarmonicModel) YearRange() (first, last int) {
	return m.BaseYear, m.BaseYear + m.NYears - 1
}

// YearBucket returns the year row used for an instant.
func (m *HarmonicModel) YearBucket(t time.Time) int {
	y, _ := m.bucket(timeToSeconds(t))
	return y
}

// bucket maps unix seconds to a year row and the unix seconds of that row's
// epoch (1 January 00:00 UTC). Instants before the first year use row 0 and
// instants after the last year use the last row.
func (m *HarmonicModel) bucket(sec float64) (int, float64) {
	y := time.Unix(int64(math.Floor(sec)), 0).UTC().Year() - m.BaseYear
	if y < 0 {
		y = 0
	} else if y > m.NYears-1 {
		y = m.NYears - 1
	}
	return y, float64(yearStart(m.BaseYear + y).Unix())
}

// Validate checks that the arrays are shaped so every bucket can be indexed.
// It does not judge the values themselves.
func (m *HarmonicModel) Validate() error {
	if m.NYears < 1 {
		return fmt.Errorf("harmonic model %q: n_years must be >= 1, got %d", m.Name, m.NYears)
	}
	if m.NConstituents < 0 || m.NConstituents > MaxConstituents {
		return fmt.Errorf("harmonic model %q: n_constituents must be in [0, %d], got %d", m.Name, MaxConstituents, m.NConstituents)
	}
	size := m.NConstituents * m.NYears
	if len(m.Amps) != size {
		return fmt.Errorf("harmonic model %q: expected %d amplitudes, got %d", m.Name, size, len(m.Amps))
	}
	if len(m.Phases) != size {
		return fmt.Errorf("harmonic model %q: expected %d phases, got %d", m.Name, size, len(m.Phases))
	}
	if len(m.Speeds) != m.NConstituents && len(m.Speeds) != size {
		return fmt.Errorf("harmonic model %q: expected %d or %d speeds, got %d", m.Name, m.NConstituents, size, len(m.Speeds))
	}
	return nil
}

// ConstituentNames labels each speed with its standard constituent name.
// Speeds without a known name are labelled by index.
func (m *HarmonicModel) ConstituentNames() []string {
	names := make([]string, m.NConstituents)
	for i := range names {
		name, ok := ConstituentName(m.Speed(0, i))
		if !ok {
			name = fmt.Sprintf("#%d", i)
		}
		names[i] = name
	}
	return names
}

// PortOffset adjusts a harmonic model for a secondary port.
type PortOffset struct {
	TimeOffset  time.Duration
	LevelOffset float64 // Meters.
	LevelScale  float64 // Zero is treated as 1.
}

func (o PortOffset) scale() float64 {
	if o.LevelScale == 0 {
		return 1
	}
	return o.LevelScale
}

// Position is a latitude and longitude in degrees.
type Position struct {
	Lat, Lon float64
}

// Station is an immutable named tide source.
type Station struct {
	Name     string
	Type     StationType
	Harmonic *HarmonicModel
	Offset   PortOffset
	Position *Position // Own location; nil means the model's.
}

// Location returns where the station is. Reference stations without a
// position of their own report the position of the model they borrow.
func (s *Station) Location() (lat, lon float64) {
	if s.Position != nil {
		return s.Position.Lat, s.Position.Lon
	}
	return s.Harmonic.Lat, s.Harmonic.Lon
}

// YearRange returns the calendar years the station's data covers.
func (s *Station) YearRange() (first, last int) {
	return s.Harmonic.YearRange()
}

// Covers reports whether year falls inside the station's data.
func (s *Station) Covers(year int) bool {
	first, last := s.YearRange()
	return year >= first && year <= last
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func timeToSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func secondsToTime(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
