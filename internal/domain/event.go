package domain

import (
	"math"
	"time"
)

// Refinement rounds. They are fixed so every search costs the same.
const (
	BisectionRounds = 2
	NewtonRounds    = 3
)

// EventKind classifies a tidal event.
type EventKind int

const (
	// None marks an empty event slot or a window without an extremum.
	None EventKind = iota
	// High is high water.
	High
	// Low is low water.
	Low
)

func (k EventKind) String() string {
	switch k {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "none"
	}
}

// TidalEvent is a high or low water.
type TidalEvent struct {
	Kind       EventKind
	Time       time.Time // UTC.
	Level      float64   // Meters.
	NeapSpring float64   // 0 at neaps, 1 at springs.
}

// FindEvent looks for a high or low water between from and to.
//
// carried is the slope at from as returned by the previous call over a
// contiguous window, or 0 to have it computed. The slope at to is returned
// for the next window. When the slope does not change sign over the window
// the event is None.
func FindEvent(s *Station, from, to time.Time, carried float64) (TidalEvent, float64) {
	return findEvent(s, timeToSeconds(from), timeToSeconds(to), carried)
}

func findEvent(s *Station, t0, t1, carried float64) (TidalEvent, float64) {
	slope0 := carried
	if slope0 == 0 {
		slope0 = predictAt(t0, s, Slope)
	}
	slope1 := predictAt(t1, s, Slope)
	next := slope1
	if slope0*slope1 > 0 {
		return TidalEvent{}, next
	}

	var t float64
	for i := 0; i < BisectionRounds; i++ {
		t = (t0 + t1) / 2
		slope1 = predictAt(t, s, Slope)
		if slope1*slope0 < 0 {
			t1 = t
		} else {
			t0 = t
		}
	}

	slope := slope1
	curvature := predictAt(t, s, Curvature)
	for i := 0; i < NewtonRounds; i++ {
		t -= slope / curvature
		slope = predictAt(t, s, Slope)
		curvature = predictAt(t, s, Curvature)
	}
	t -= slope / curvature
	// A flat tide has no curvature to refine against.
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return TidalEvent{}, next
	}

	ev := TidalEvent{
		Kind:  Low,
		Time:  secondsToTime(t),
		Level: predictAt(t, s, Height),
	}
	if curvature < 0 {
		ev.Kind = High
	}
	ev.NeapSpring = neapSpring(s, ev.Level)
	return ev, next
}

// neapSpring places an event's range between the model's neap and spring
// ranges. Degenerate models with equal ranges give 0.
func neapSpring(s *Station, level float64) float64 {
	h := s.Harmonic
	v := (math.Abs(level-h.Offset-s.Offset.LevelOffset) - h.NeapsRange) /
		((h.SpringsRange - h.NeapsRange) * s.Offset.scale())
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
