package domain

import (
	"math"
	"testing"
)

func stationFor(name string, typ StationType, baseYear, nYears int, lat, lon float64) *Station {
	return &Station{
		Name: name,
		Type: typ,
		Harmonic: &HarmonicModel{
			Name:     name,
			BaseYear: baseYear,
			NYears:   nYears,
			Lat:      lat,
			Lon:      lon,
		},
	}
}

func testRegistry() *Registry {
	return NewRegistry([]*Station{
		stationFor("Millport, Scotland", StationHarmonic, 2023, 5, 55.7496, -4.9058),
		stationFor("Millport (old)", StationHarmonic, 1990, 5, 55.7496, -4.9058),
		stationFor("Millport (older)", StationHarmonic, 1980, 5, 55.7496, -4.9058),
		stationFor("Brighton", StationHarmonic, 2020, 10, 50.82, -0.14),
		stationFor("CLOCK", StationClock, 2000, 1, 0, 0),
	})
}

// TestRegistry_Find tests prefix matching and the year hint.
func TestRegistry_Find(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name  string
		query string
		year  int
		want  string
	}{
		{"exact", "Brighton", 0, "Brighton"},
		{"case-insensitive prefix", "brig", 0, "Brighton"},
		{"first match without hint", "millport", 0, "Millport, Scotland"},
		{"covering year wins", "millport", 1992, "Millport (old)"},
		{"covering year later in list", "Millport", 1981, "Millport (older)"},
		{"closest centre", "millport", 2000, "Millport (old)"},
		{"closest centre in the future", "millport", 2040, "Millport, Scotland"},
		{"no match", "Dover", 0, ""},
		{"prefix longer than name", "Brighton Marina", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Find(tt.query, tt.year)
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected no station, got %q", got.Name)
				}
				return
			}
			if got == nil {
				t.Fatalf("expected %q, got nil", tt.want)
			}
			if got.Name != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got.Name)
			}
		})
	}
}

// TestRegistry_FindTie tests that equally distant stations resolve to the earlier one.
func TestRegistry_FindTie(t *testing.T) {
	r := NewRegistry([]*Station{
		stationFor("Port A", StationHarmonic, 2000, 1, 0, 0), // Centre 2000.
		stationFor("Port B", StationHarmonic, 2010, 1, 0, 0), // Centre 2010.
	})
	if got := r.Find("port", 2005); got == nil || got.Name != "Port A" {
		t.Errorf("expected Port A, got %v", got)
	}
}

// TestRegistry_Nearest tests the nearest station search.
func TestRegistry_Nearest(t *testing.T) {
	r := testRegistry()

	got, dist := r.Nearest(55.75, -4.92)
	if got == nil || got.Name != "Millport, Scotland" {
		t.Fatalf("expected Millport, Scotland, got %v", got)
	}
	if dist > 2 {
		t.Errorf("expected under 2 km, got %.2f", dist)
	}

	// The clock station sits at 0,0 but has no real location.
	got, _ = r.Nearest(0.1, 0.1)
	if got == nil || got.Type == StationClock {
		t.Errorf("expected a located station, got %v", got)
	}

	// A reference station with its own position is found there, not at its
	// model's position.
	base := stationFor("Base", StationHarmonic, 2020, 1, 50, 0)
	outer := &Station{
		Name:     "Outer",
		Type:     StationReference,
		Harmonic: base.Harmonic,
		Offset:   PortOffset{LevelScale: 1},
		Position: &Position{Lat: 51, Lon: 0},
	}
	inner := &Station{Name: "Inner", Type: StationReference, Harmonic: base.Harmonic, Offset: PortOffset{LevelScale: 1}}
	refs := NewRegistry([]*Station{base, outer, inner})
	if got, dist := refs.Nearest(51.01, 0); got != outer || dist > 2 {
		t.Errorf("expected Outer within 2 km, got %v at %.2f km", got, dist)
	}
	if lat, lon := inner.Location(); lat != 50 || lon != 0 {
		t.Errorf("expected Inner at its model's position, got %v,%v", lat, lon)
	}

	if got, dist := NewRegistry(nil).Nearest(0, 0); got != nil || dist != 0 {
		t.Errorf("empty registry: expected nil, 0; got %v, %v", got, dist)
	}
}

// TestRegistry_Stations tests that the registry keeps its own order and slice.
func TestRegistry_Stations(t *testing.T) {
	input := []*Station{
		stationFor("B", StationHarmonic, 2020, 1, 0, 0),
		stationFor("A", StationHarmonic, 2020, 1, 0, 0),
	}
	r := NewRegistry(input)
	input[0] = nil

	stations := r.Stations()
	if r.Len() != 2 || stations[0] == nil || stations[0].Name != "B" || stations[1].Name != "A" {
		t.Fatalf("unexpected stations: %v", stations)
	}
	stations[1] = nil
	if r.Stations()[1] == nil {
		t.Error("Stations returned the registry's own slice")
	}
}

// TestHaversineKm tests the great circle distance.
func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want, epsilon          float64
	}{
		{"same point", 55.7, -4.9, 55.7, -4.9, 0, 1e-9},
		{"one degree of latitude", 0, 0, 1, 0, 111.19, 0.01},
		{"quarter meridian", 0, 0, 90, 0, math.Pi / 2 * 6371, 1e-6},
	}
	for _, tt := range tests {
		if got := haversineKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2); math.Abs(got-tt.want) > tt.epsilon {
			t.Errorf("%s: expected %.4f, got %.4f", tt.name, tt.want, got)
		}
	}
}
