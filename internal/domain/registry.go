package domain

import (
	"math"
	"strings"
)

// Registry is an ordered, read-only set of stations.
type Registry struct {
	stations []*Station
}

// NewRegistry creates a registry that searches stations in the given order.
func NewRegistry(stations []*Station) *Registry {
	owned := make([]*Station, len(stations))
	copy(owned, stations)
	return &Registry{stations: owned}
}

// Len returns the number of stations.
func (r *Registry) Len() int {
	return len(r.stations)
}

// Stations returns the stations in registry order.
func (r *Registry) Stations() []*Station {
	out := make([]*Station, len(r.stations))
	copy(out, r.stations)
	return out
}

// Find returns the station whose name starts with name, ignoring case.
//
// year 0 means no hint and the first match wins. Otherwise the first match
// covering year wins outright, and failing that the match whose centre year
// is closest to year; ties go to the earlier station. Find returns nil when
// nothing matches.
func (r *Registry) Find(name string, year int) *Station {
	prefix := strings.ToLower(name)
	var best *Station
	bestDist := math.Inf(1)
	for _, s := range r.stations {
		if !strings.HasPrefix(strings.ToLower(s.Name), prefix) {
			continue
		}
		if year == 0 || s.Covers(year) {
			return s
		}
		first, last := s.YearRange()
		dist := math.Abs(float64(first+last)/2 - float64(year))
		if dist < bestDist {
			best, bestDist = s, dist
		}
	}
	return best
}

// Nearest returns the harmonic or reference station closest to lat/lon and
// its distance in km. Clock stations have no location and are skipped.
func (r *Registry) Nearest(lat, lon float64) (*Station, float64) {
	var best *Station
	bestDist := math.MaxFloat64
	for _, s := range r.stations {
		if s.Type == StationClock {
			continue
		}
		sLat, sLon := s.Location()
		d := haversineKm(lat, lon, sLat, sLon)
		if d < bestDist {
			best, bestDist = s, d
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestDist
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := Deg2Rad(lat2 - lat1)
	dLon := Deg2Rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(Deg2Rad(lat1))*math.Cos(Deg2Rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}
