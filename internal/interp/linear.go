// Package interp provides interpolation over uniformly sampled series.
package interp

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is returned when a coordinate falls outside a series.
var ErrOutOfRange = errors.New("coordinate outside series")

// Series is a sequence of samples taken every Step starting at X0.
// It covers [X0, X0+Step*len(Values)).
type Series struct {
	X0     float64
	Step   float64
	Values []float64
}

// Validate checks if the series is usable.
func (s Series) Validate() error {
	if s.Step <= 0 {
		return fmt.Errorf("step must be > 0, got %v", s.Step)
	}
	if len(s.Values) < 2 {
		return fmt.Errorf("series must have at least 2 values, got %d", len(s.Values))
	}
	return nil
}

// End returns the first coordinate past the series.
func (s Series) End() float64 {
	return s.X0 + s.Step*float64(len(s.Values))
}

// Index returns the sample at or before x.
func (s Series) Index(x float64) (int, error) {
	if err := s.Validate(); err != nil {
		return 0, fmt.Errorf("invalid series: %w", err)
	}
	if math.IsNaN(x) || x < s.X0 || x >= s.End() {
		return 0, fmt.Errorf("x %.6f outside [%.6f, %.6f): %w", x, s.X0, s.End(), ErrOutOfRange)
	}
	i := int(math.Floor((x - s.X0) / s.Step))
	// Guard against rounding at the right edge.
	if i > len(s.Values)-1 {
		i = len(s.Values) - 1
	}
	return i, nil
}

// At linearly interpolates between the samples bracketing x. Past the last
// sample the last value is held.
//
// Formula:
//
//	f(x) ≈ (1-t)*v[i] + t*v[j],  t = (x - x_i) / step,  j = min(i+1, n-1)
func (s Series) At(x float64) (float64, error) {
	i, err := s.Index(x)
	if err != nil {
		return math.NaN(), err
	}
	j := i + 1
	if j >= len(s.Values) {
		j = i
	}
	t := (x - s.X0 - float64(i)*s.Step) / s.Step
	return s.Values[i] + (s.Values[j]-s.Values[i])*t, nil
}

// Slope returns the change per step at sample i: a central difference
// inside the series, one-sided at either end.
func (s Series) Slope(i int) float64 {
	last := len(s.Values) - 1
	switch {
	case i <= 0:
		return s.Values[1] - s.Values[0]
	case i >= last:
		return s.Values[last] - s.Values[last-1]
	default:
		return (s.Values[i+1] - s.Values[i-1]) / 2
	}
}

// SlopeAt returns Slope at the sample at or before x.
func (s Series) SlopeAt(x float64) (float64, error) {
	i, err := s.Index(x)
	if err != nil {
		return math.NaN(), err
	}
	return s.Slope(i), nil
}
