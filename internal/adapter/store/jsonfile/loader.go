// Package jsonfile loads harmonic datasets stored as a JSON station list.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"go.ngs.io/tidewatch/internal/domain"
)

// StationRecord is one station as written in the JSON dataset.
type StationRecord struct {
	Name          string      `json:"name"`
	Type          string      `json:"type"`
	BaseYear      int         `json:"base_year"`
	NYears        int         `json:"n_years"`
	NConstituents int         `json:"n_constituents"`
	Lat           *float64    `json:"lat,omitempty"`
	Lon           *float64    `json:"lon,omitempty"`
	Offset        float64     `json:"offset"`
	NeapsRange    float64     `json:"neaps_range"`
	SpringsRange  float64     `json:"springs_range"`
	MeanError     float64     `json:"mean_error"`
	Speeds        []float64   `json:"speeds,omitempty"`
	Amps          []uint16    `json:"amps,omitempty"`
	Phases        []uint16    `json:"phases,omitempty"`
	Reference     string      `json:"reference,omitempty"`
	PortOffset    *PortRecord `json:"port_offset,omitempty"`
}

// PortRecord is the JSON form of a domain.PortOffset.
type PortRecord struct {
	TimeOffsetS  float64 `json:"time_offset_s"`
	LevelOffsetM float64 `json:"level_offset_m"`
	LevelScale   float64 `json:"level_scale"`
}

// Store reads a station list from a file system.
type Store struct {
	fsys fs.FS
	path string
}

// NewStore creates a store reading path from fsys.
func NewStore(fsys fs.FS, path string) *Store {
	return &Store{
		fsys: fsys,
		path: path,
	}
}

// LoadStations loads every station in file order.
//
// Reference stations name the station whose harmonic model they borrow;
// the referenced station may appear anywhere in the list.
func (s *Store) LoadStations() ([]*domain.Station, error) {
	b, err := fs.ReadFile(s.fsys, s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read station file %s: %w", s.path, err)
	}

	var records []StationRecord
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("failed to decode station file %s: %w", s.path, err)
	}

	stations := make([]*domain.Station, len(records))
	models := make(map[string]*domain.HarmonicModel, len(records))

	// First pass: stations carrying their own model.
	for i, r := range records {
		typ, err := domain.ParseStationType(r.Type)
		if err != nil {
			return nil, fmt.Errorf("station %q: %w", r.Name, err)
		}
		st := &domain.Station{
			Name:   r.Name,
			Type:   typ,
			Offset: r.PortOffset.toDomain(),
		}
		stations[i] = st
		if typ == domain.StationReference {
			continue
		}
		model := r.model()
		if err := model.Validate(); err != nil {
			return nil, err
		}
		st.Harmonic = model
		models[strings.ToLower(r.Name)] = model
	}

	// Second pass: reference stations.
	for i, r := range records {
		st := stations[i]
		if st.Type != domain.StationReference {
			continue
		}
		if r.Reference == "" {
			return nil, fmt.Errorf("reference station %q does not name a harmonic station", r.Name)
		}
		model, ok := models[strings.ToLower(r.Reference)]
		if !ok {
			return nil, fmt.Errorf("reference station %q: unknown harmonic station %q", r.Name, r.Reference)
		}
		st.Harmonic = model
		if (r.Lat == nil) != (r.Lon == nil) {
			return nil, fmt.Errorf("reference station %q: lat and lon must be given together", r.Name)
		}
		if r.Lat != nil {
			st.Position = &domain.Position{Lat: *r.Lat, Lon: *r.Lon}
		}
	}

	return stations, nil
}

func (r StationRecord) model() *domain.HarmonicModel {
	return &domain.HarmonicModel{
		Name:          r.Name,
		BaseYear:      r.BaseYear,
		NYears:        r.NYears,
		NConstituents: r.NConstituents,
		Lat:           deref(r.Lat),
		Lon:           deref(r.Lon),
		Offset:        r.Offset,
		NeapsRange:    r.NeapsRange,
		SpringsRange:  r.SpringsRange,
		MeanError:     r.MeanError,
		Speeds:        r.Speeds,
		Amps:          r.Amps,
		Phases:        r.Phases,
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func (p *PortRecord) toDomain() domain.PortOffset {
	if p == nil {
		return domain.PortOffset{LevelScale: 1}
	}
	return domain.PortOffset{
		TimeOffset:  time.Duration(p.TimeOffsetS * float64(time.Second)),
		LevelOffset: p.LevelOffsetM,
		LevelScale:  p.LevelScale,
	}
}

// Record converts a station back to its JSON form.
func Record(s *domain.Station) StationRecord {
	h := s.Harmonic
	r := StationRecord{
		Name:          s.Name,
		Type:          s.Type.String(),
		BaseYear:      h.BaseYear,
		NYears:        h.NYears,
		NConstituents: h.NConstituents,
		Offset:        h.Offset,
		NeapsRange:    h.NeapsRange,
		SpringsRange:  h.SpringsRange,
		MeanError:     h.MeanError,
	}
	if s.Type == domain.StationReference {
		r.Reference = h.Name
		if s.Position != nil {
			r.Lat, r.Lon = &s.Position.Lat, &s.Position.Lon
		}
	} else {
		r.Lat, r.Lon = &h.Lat, &h.Lon
		r.Speeds, r.Amps, r.Phases = h.Speeds, h.Amps, h.Phases
	}
	if s.Offset != (domain.PortOffset{}) && s.Offset != (domain.PortOffset{LevelScale: 1}) {
		r.PortOffset = &PortRecord{
			TimeOffsetS:  s.Offset.TimeOffset.Seconds(),
			LevelOffsetM: s.Offset.LevelOffset,
			LevelScale:   s.Offset.LevelScale,
		}
	}
	return r
}
