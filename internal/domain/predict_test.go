package domain

import (
	"math"
	"testing"
	"time"
)

// TestPredict_SingleConstituent tests the height, slope and curvature of a
// pure M2 tide against closed forms.
func TestPredict_SingleConstituent(t *testing.T) {
	s := newM2Station()

	tests := []struct {
		name    string
		at      time.Time
		d       Derivative
		want    float64
		epsilon float64
	}{
		{"height at high water", m2Epoch, Height, 2 + m2Amp, 1e-9},
		{"height at quarter period", m2Epoch.Add(m2Period / 4), Height, 2, 1e-6},
		{"height at low water", m2Epoch.Add(m2Period / 2), Height, 2 - m2Amp, 1e-6},
		{"slope at high water", m2Epoch, Slope, 0, 1e-15},
		{"slope at quarter period", m2Epoch.Add(m2Period / 4), Slope, -m2Amp * m2Speed, 1e-10},
		{"curvature at high water", m2Epoch, Curvature, -m2Amp * m2Speed * m2Speed, 1e-15},
		{"curvature at low water", m2Epoch.Add(m2Period / 2), Curvature, m2Amp * m2Speed * m2Speed, 1e-14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Predict(tt.at, s, tt.d)
			if math.Abs(got-tt.want) > tt.epsilon {
				t.Errorf("expected %.12g, got %.12g", tt.want, got)
			}
		})
	}
}

// TestPredict_NilStation tests that a missing station yields NaN.
func TestPredict_NilStation(t *testing.T) {
	if v := Predict(m2Epoch, nil, Height); !math.IsNaN(v) {
		t.Errorf("nil station: expected NaN, got %v", v)
	}
	if v := Predict(m2Epoch, &Station{Name: "empty"}, Height); !math.IsNaN(v) {
		t.Errorf("station without model: expected NaN, got %v", v)
	}
}

// TestPredict_EmptyModel tests that a model without constituents is flat.
func TestPredict_EmptyModel(t *testing.T) {
	s := &Station{Harmonic: &HarmonicModel{BaseYear: 2025, NYears: 1, Offset: 1.25}}
	for h := 0; h < 48; h += 7 {
		at := m2Epoch.Add(time.Duration(h) * time.Hour)
		if v := Predict(at, s, Height); v != 1.25 {
			t.Errorf("hour %d: expected 1.25, got %v", h, v)
		}
		if v := Predict(at, s, Slope); v != 0 {
			t.Errorf("hour %d: expected zero slope, got %v", h, v)
		}
	}
}

// TestPredict_PortOffset tests that a secondary port shifts time and level
// and scales the base station's tide.
func TestPredict_PortOffset(t *testing.T) {
	base := newM2Station()
	port := &Station{
		Name:     "Port",
		Type:     StationReference,
		Harmonic: base.Harmonic,
		Offset: PortOffset{
			TimeOffset:  25 * time.Minute,
			LevelOffset: 0.3,
			LevelScale:  0.8,
		},
	}

	for h := 0; h < 24; h++ {
		at := time.Date(2025, 6, 1, h, 17, 0, 0, time.UTC)
		want := (Predict(at.Add(25*time.Minute), base, Height) + 0.3) * 0.8
		got := Predict(at, port, Height)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("%s: expected %.9f, got %.9f", at.Format(time.RFC3339), want, got)
		}

		wantSlope := Predict(at.Add(25*time.Minute), base, Slope) * 0.8
		if gotSlope := Predict(at, port, Slope); math.Abs(gotSlope-wantSlope) > 1e-15 {
			t.Errorf("%s slope: expected %g, got %g", at.Format(time.RFC3339), wantSlope, gotSlope)
		}
	}
}

// TestPredict_ZeroLevelScale tests that a zero scale behaves like 1.
func TestPredict_ZeroLevelScale(t *testing.T) {
	base := newM2Station()
	port := *base
	port.Offset = PortOffset{}

	at := time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC)
	if got, want := Predict(at, &port, Height), Predict(at, base, Height); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

// TestPredict_YearRows tests that each calendar year uses its own row and epoch.
func TestPredict_YearRows(t *testing.T) {
	s := &Station{
		Harmonic: &HarmonicModel{
			BaseYear:      2024,
			NYears:        2,
			NConstituents: 1,
			Speeds:        []float64{m2Speed, m2Speed},
			Amps:          []uint16{5461, 10922},
			Phases:        []uint16{0, 0},
		},
	}

	// Each row is phased to its own 1 January, so both are at high water there.
	tests := []struct {
		at   time.Time
		want float64
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), DequantizeAmplitude(5461)},
		{time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), DequantizeAmplitude(10922)},
	}
	for _, tt := range tests {
		if got := Predict(tt.at, s, Height); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%d: expected %.9f, got %.9f", tt.at.Year(), tt.want, got)
		}
	}
}

// TestPredict_Deterministic tests that repeated calls agree bit for bit.
func TestPredict_Deterministic(t *testing.T) {
	s := newM2Station()
	at := time.Date(2025, 8, 14, 3, 27, 11, 500_000_000, time.UTC)
	first := Predict(at, s, Height)
	for i := 0; i < 10; i++ {
		if v := Predict(at, s, Height); v != first {
			t.Fatalf("call %d: expected %v, got %v", i, first, v)
		}
	}
}
