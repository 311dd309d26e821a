package domain

import (
	"math"
	"time"
)

// m2Speed is the M2 speed in rad/s.
var m2Speed = DegPerHourToRadPerSecond(28.9841042)

// m2Epoch is the row epoch of the single-year M2 test station.
var m2Epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// m2Period is one M2 cycle.
var m2Period = time.Duration(2 * math.Pi / m2Speed * float64(time.Second))

// newM2Station returns a single-constituent station for 2025 whose high
// waters fall on m2Epoch + k*m2Period.
func newM2Station() *Station {
	return &Station{
		Name: "M2 Test",
		Type: StationHarmonic,
		Harmonic: &HarmonicModel{
			Name:          "M2 Test",
			BaseYear:      2025,
			NYears:        1,
			NConstituents: 1,
			Lat:           50,
			Lon:           -4,
			Offset:        2,
			NeapsRange:    0.5,
			SpringsRange:  1.5,
			Speeds:        []float64{m2Speed},
			Amps:          []uint16{5461}, // ~1 m.
			Phases:        []uint16{0},
		},
		Offset: PortOffset{LevelScale: 1},
	}
}

// m2Amp is the dequantized amplitude of newM2Station.
var m2Amp = DequantizeAmplitude(5461)
