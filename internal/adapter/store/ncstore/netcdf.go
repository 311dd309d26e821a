// Package ncstore reads and writes harmonic stations stored as NetCDF files,
// one station per file.
//
// Layout:
//
//	dimensions: year, constituent
//	speed(constituent)            double, attribute units = "rad/s" | "deg/hour"
//	amplitude(year, constituent)  int, 16-bit quantized
//	phase(year, constituent)      int, 16-bit quantized
//	global attributes: name, station_type, base_year, offset, neaps_range,
//	springs_range, mean_error, lat, lon, and optionally time_offset_s,
//	level_offset_m, level_scale
package ncstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/tidewatch/internal/domain"
)

const (
	yearDimName        = "year"
	constituentDimName = "constituent"
	speedVarName       = "speed"
	amplitudeVarName   = "amplitude"
	phaseVarName       = "phase"

	unitsRadPerSecond = "rad/s"
	unitsDegPerHour   = "deg/hour"
)

// Store provides access to a directory of station NetCDF files.
type Store struct {
	dataDir string
	cache   map[string]*domain.Station // Keyed by file path.
	mu      sync.RWMutex               // Protect cache.
}

// NewStore creates a new NetCDF station store.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		cache:   make(map[string]*domain.Station),
	}
}

// LoadStations loads every *.nc file in the data directory, ordered by file name.
func (s *Store) LoadStations() ([]*domain.Station, error) {
	paths, err := filepath.Glob(filepath.Join(s.dataDir, "*.nc"))
	if err != nil {
		return nil, fmt.Errorf("failed to list NetCDF files in %s: %w", s.dataDir, err)
	}
	sort.Strings(paths)

	stations := make([]*domain.Station, 0, len(paths))
	for _, p := range paths {
		st, err := s.LoadFile(p)
		if err != nil {
			return nil, err
		}
		stations = append(stations, st)
	}
	return stations, nil
}

// LoadFile loads one station file. Results are cached by path.
func (s *Store) LoadFile(path string) (*domain.Station, error) {
	s.mu.RLock()
	if st, ok := s.cache[path]; ok {
		s.mu.RUnlock()
		return st, nil
	}
	s.mu.RUnlock()

	st, err := readStation(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load station from %s: %w", path, err)
	}

	s.mu.Lock()
	s.cache[path] = st
	s.mu.Unlock()

	return st, nil
}

func readStation(path string) (*domain.Station, error) {
	//nolint:gosec // G304: path comes from the configured data directory.
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file: %w", err)
	}
	defer func() { _ = nc.Close() }()

	name, err := readStringAttr(nc.Attr("name"))
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	typeName, _ := readStringAttr(nc.Attr("station_type"))
	typ, err := domain.ParseStationType(typeName)
	if err != nil {
		return nil, err
	}
	if typ == domain.StationReference {
		return nil, fmt.Errorf("reference stations cannot be stored in NetCDF")
	}

	baseYear, err := readIntAttr(nc.Attr("base_year"))
	if err != nil {
		return nil, fmt.Errorf("base_year: %w", err)
	}

	model := &domain.HarmonicModel{Name: name, BaseYear: baseYear}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"offset", &model.Offset},
		{"neaps_range", &model.NeapsRange},
		{"springs_range", &model.SpringsRange},
		{"mean_error", &model.MeanError},
		{"lat", &model.Lat},
		{"lon", &model.Lon},
	} {
		v, err := readFloatAttr(nc.Attr(f.name))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	speedVar, err := nc.Var(speedVarName)
	if err != nil {
		return nil, fmt.Errorf("speed variable not found: %w", err)
	}
	model.Speeds, err = readFloat64Var(speedVar)
	if err != nil {
		return nil, fmt.Errorf("failed to read speeds: %w", err)
	}
	units, _ := readStringAttr(speedVar.Attr("units"))
	switch units {
	case "", unitsRadPerSecond:
	case unitsDegPerHour:
		for i, v := range model.Speeds {
			model.Speeds[i] = domain.DegPerHourToRadPerSecond(v)
		}
	default:
		return nil, fmt.Errorf("unsupported speed units %q", units)
	}

	model.Amps, model.NYears, model.NConstituents, err = readQuantizedVar(nc, amplitudeVarName)
	if err != nil {
		return nil, err
	}
	var nYears, nConst int
	model.Phases, nYears, nConst, err = readQuantizedVar(nc, phaseVarName)
	if err != nil {
		return nil, err
	}
	if nYears != model.NYears || nConst != model.NConstituents {
		return nil, fmt.Errorf("phase is [%d, %d] but amplitude is [%d, %d]", nYears, nConst, model.NYears, model.NConstituents)
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	st := &domain.Station{
		Name:     name,
		Type:     typ,
		Harmonic: model,
		Offset:   domain.PortOffset{LevelScale: 1},
	}
	if v, err := readFloatAttr(nc.Attr("time_offset_s")); err == nil {
		st.Offset.TimeOffset = time.Duration(v * float64(time.Second))
	}
	if v, err := readFloatAttr(nc.Attr("level_offset_m")); err == nil {
		st.Offset.LevelOffset = v
	}
	if v, err := readFloatAttr(nc.Attr("level_scale")); err == nil {
		st.Offset.LevelScale = v
	}
	return st, nil
}

// readQuantizedVar reads a (year, constituent) variable of raw 16-bit values.
func readQuantizedVar(nc netcdf.Dataset, name string) ([]uint16, int, int, error) {
	v, err := nc.Var(name)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("%s variable not found: %w", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get dimensions of %s: %w", name, err)
	}
	if len(dims) != 2 {
		return nil, 0, 0, fmt.Errorf("expected 2D %s, got %dD", name, len(dims))
	}
	nYears, err := dims[0].Len()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get year length: %w", err)
	}
	nConst, err := dims[1].Len()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get constituent length: %w", err)
	}

	t, err := v.Type()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get var type: %w", err)
	}
	if t != netcdf.INT {
		return nil, 0, 0, fmt.Errorf("%s: unsupported data type: %v", name, t)
	}
	raw := make([]int32, nYears*nConst)
	if err := v.ReadInt32s(raw); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read %s: %w", name, err)
	}

	out := make([]uint16, len(raw))
	for i, r := range raw {
		if r < 0 || r > 0xFFFF {
			return nil, 0, 0, fmt.Errorf("%s[%d] = %d is not a 16-bit quantized value", name, i, r)
		}
		out[i] = uint16(r)
	}
	return out, int(nYears), int(nConst), nil
}

// readFloat64Var reads a 1D double variable.
func readFloat64Var(v netcdf.Var) ([]float64, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("expected 1D variable, got %dD", len(dims))
	}
	length, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	data := make([]float64, length)
	if err := v.ReadFloat64s(data); err != nil {
		return nil, err
	}
	return data, nil
}

func readStringAttr(a netcdf.Attr) (string, error) {
	n, err := a.Len()
	if err != nil {
		return "", fmt.Errorf("attribute not found: %w", err)
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

func readFloatAttr(a netcdf.Attr) (float64, error) {
	if _, err := a.Len(); err != nil {
		return 0, fmt.Errorf("attribute not found: %w", err)
	}
	buf := make([]float64, 1)
	if err := a.ReadFloat64s(buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readIntAttr(a netcdf.Attr) (int, error) {
	if _, err := a.Len(); err != nil {
		return 0, fmt.Errorf("attribute not found: %w", err)
	}
	buf := make([]int32, 1)
	if err := a.ReadInt32s(buf); err != nil {
		return 0, err
	}
	return int(buf[0]), nil
}

// WriteStation writes a harmonic or clock station to path, replacing any
// existing file.
func WriteStation(path string, st *domain.Station) error {
	if st.Type == domain.StationReference {
		return fmt.Errorf("station %q: reference stations cannot be stored in NetCDF", st.Name)
	}
	h := st.Harmonic
	if err := h.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER)
	if err != nil {
		return fmt.Errorf("failed to create NetCDF file: %w", err)
	}
	defer func() { _ = ds.Close() }()

	yearDim, err := ds.AddDim(yearDimName, uint64(h.NYears))
	if err != nil {
		return fmt.Errorf("failed to add year dimension: %w", err)
	}
	constDim, err := ds.AddDim(constituentDimName, uint64(h.NConstituents))
	if err != nil {
		return fmt.Errorf("failed to add constituent dimension: %w", err)
	}

	// Shared speeds are stored once; per-year speeds are not representable.
	if len(h.Speeds) != h.NConstituents {
		return fmt.Errorf("station %q: per-year speeds cannot be stored in NetCDF", st.Name)
	}
	speedVar, err := ds.AddVar(speedVarName, netcdf.DOUBLE, []netcdf.Dim{constDim})
	if err != nil {
		return fmt.Errorf("failed to add speed variable: %w", err)
	}
	ampVar, err := ds.AddVar(amplitudeVarName, netcdf.INT, []netcdf.Dim{yearDim, constDim})
	if err != nil {
		return fmt.Errorf("failed to add amplitude variable: %w", err)
	}
	phaseVar, err := ds.AddVar(phaseVarName, netcdf.INT, []netcdf.Dim{yearDim, constDim})
	if err != nil {
		return fmt.Errorf("failed to add phase variable: %w", err)
	}

	if err := speedVar.Attr("units").WriteBytes([]byte(unitsRadPerSecond)); err != nil {
		return fmt.Errorf("failed to write speed units: %w", err)
	}
	attrs := []struct {
		name  string
		write func(netcdf.Attr) error
	}{
		{"name", func(a netcdf.Attr) error { return a.WriteBytes([]byte(st.Name)) }},
		{"station_type", func(a netcdf.Attr) error { return a.WriteBytes([]byte(st.Type.String())) }},
		{"base_year", func(a netcdf.Attr) error { return a.WriteInt32s([]int32{int32(h.BaseYear)}) }},
		{"offset", float64Attr(h.Offset)},
		{"neaps_range", float64Attr(h.NeapsRange)},
		{"springs_range", float64Attr(h.SpringsRange)},
		{"mean_error", float64Attr(h.MeanError)},
		{"lat", float64Attr(h.Lat)},
		{"lon", float64Attr(h.Lon)},
		{"time_offset_s", float64Attr(st.Offset.TimeOffset.Seconds())},
		{"level_offset_m", float64Attr(st.Offset.LevelOffset)},
		{"level_scale", float64Attr(levelScale(st.Offset))},
	}
	for _, a := range attrs {
		if err := a.write(ds.Attr(a.name)); err != nil {
			return fmt.Errorf("failed to write attribute %s: %w", a.name, err)
		}
	}

	if err := ds.EndDef(); err != nil {
		return fmt.Errorf("failed to end define mode: %w", err)
	}

	if err := speedVar.WriteFloat64s(h.Speeds); err != nil {
		return fmt.Errorf("failed to write speeds: %w", err)
	}
	if err := ampVar.WriteInt32s(widen(h.Amps)); err != nil {
		return fmt.Errorf("failed to write amplitudes: %w", err)
	}
	if err := phaseVar.WriteInt32s(widen(h.Phases)); err != nil {
		return fmt.Errorf("failed to write phases: %w", err)
	}
	return nil
}

func float64Attr(v float64) func(netcdf.Attr) error {
	return func(a netcdf.Attr) error { return a.WriteFloat64s([]float64{v}) }
}

func levelScale(o domain.PortOffset) float64 {
	if o.LevelScale == 0 {
		return 1
	}
	return o.LevelScale
}

func widen(raw []uint16) []int32 {
	out := make([]int32, len(raw))
	for i, r := range raw {
		out[i] = int32(r)
	}
	return out
}
