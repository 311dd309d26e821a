package domain

import (
	"math"
	"time"
)

// Derivative selects what Predict evaluates.
type Derivative int

const (
	// Height is the water level in meters.
	Height Derivative = iota
	// Slope is the first time derivative. Only its sign and ratio to
	// Curvature are meaningful.
	Slope
	// Curvature is the second time derivative.
	Curvature
)

// Predict evaluates the tide at t for a station.
//
// Each constituent contributes amp*cos(speed*t + phase + d*π/2)*speed^d, so
// derivatives fall out of the same sum. The station's PortOffset shifts the
// time and level and scales the result. A nil station yields NaN.
func Predict(t time.Time, s *Station, d Derivative) float64 {
	if s == nil || s.Harmonic == nil {
		return math.NaN()
	}
	return predictAt(timeToSeconds(t), s, d)
}

// predictAt is Predict on unix seconds, so refinement keeps sub-second precision.
func predictAt(sec float64, s *Station, d Derivative) float64 {
	h := s.Harmonic
	sec += s.Offset.TimeOffset.Seconds()
	year, epoch := h.bucket(sec)
	t := sec - epoch

	tide := 0.0
	if d == Height {
		tide = h.Offset + s.Offset.LevelOffset
	}
	shift := float64(d) * math.Pi / 2
	for i := 0; i < h.NConstituents; i++ {
		speed := h.Speed(year, i)
		term := h.Amplitude(year, i) * math.Cos(speed*t+h.Phase(year, i)+shift)
		if d > Height {
			term *= math.Pow(speed, float64(d))
		}
		tide += term
	}
	return tide * s.Offset.scale()
}
