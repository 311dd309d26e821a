package domain

import (
	"errors"
	"math"
	"time"

	"go.ngs.io/tidewatch/internal/interp"
)

const (
	// TableDays is the number of days a TideTable covers: yesterday, today, tomorrow.
	TableDays = 3
	// TableHours is the number of hourly levels in a TideTable.
	TableHours = TableDays * HoursPerDay

	day = 24 * time.Hour
)

// ErrOutOfRange is returned for instants a table does not cover.
var ErrOutOfRange = errors.New("time outside tide table")

// PopulateOutcome reports how Populate brought a table up to date.
type PopulateOutcome int

const (
	// CacheHit means the table already held the requested days.
	CacheHit PopulateOutcome = iota
	// ShiftForward means one new day was computed at the end.
	ShiftForward
	// ShiftBackward means one new day was computed at the start.
	ShiftBackward
	// FullRecompute means all three days were computed.
	FullRecompute
	// Skipped means there was no station and the table was left as it was.
	Skipped
)

func (o PopulateOutcome) String() string {
	switch o {
	case CacheHit:
		return "cache_hit"
	case ShiftForward:
		return "shift_forward"
	case ShiftBackward:
		return "shift_backward"
	case FullRecompute:
		return "full_recompute"
	default:
		return "skipped"
	}
}

// TideTable caches hourly levels and events for the day before, the day of
// and the day after BaseTime. Levels[0] is BaseTime-24h.
//
// A table is owned by one caller; it has no locking.
type TideTable struct {
	BaseTime time.Time // LocalMidnight of the centre day.
	Station  *Station
	Levels   [TableHours]float64
	Events   [TableDays]DayEvents
}

// LocalMidnight returns UTC midnight of ref's UTC calendar day moved by
// tzHours:tzMins. Both parts carry the sign of the offset.
func LocalMidnight(ref time.Time, tzHours, tzMins int) time.Time {
	ref = ref.UTC()
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Add(time.Duration(tzHours)*time.Hour + time.Duration(tzMins)*time.Minute)
}

// Populate makes the table describe the three days around ref's UTC day
// for s. Calling it again for the same day and station does nothing; moving
// by exactly one day computes only the new day. A nil station leaves the
// table untouched.
func (t *TideTable) Populate(s *Station, ref time.Time, tzHours, tzMins int) PopulateOutcome {
	if s == nil {
		return Skipped
	}
	midnight := LocalMidnight(ref, tzHours, tzMins)
	if t.Station == s && t.BaseTime.Equal(midnight) {
		return CacheHit
	}

	var outcome PopulateOutcome
	switch {
	case t.Station == s && t.BaseTime.Equal(midnight.Add(-day)):
		copy(t.Levels[:2*HoursPerDay], t.Levels[HoursPerDay:])
		t.Events[0], t.Events[1] = t.Events[1], t.Events[2]
		t.fill(2, s, midnight.Add(day))
		outcome = ShiftForward
	case t.Station == s && t.BaseTime.Equal(midnight.Add(day)):
		copy(t.Levels[HoursPerDay:], t.Levels[:2*HoursPerDay])
		t.Events[2], t.Events[1] = t.Events[1], t.Events[0]
		t.fill(0, s, midnight.Add(-day))
		outcome = ShiftBackward
	default:
		for i := 0; i < TableDays; i++ {
			t.fill(i, s, midnight.Add(time.Duration(i-1)*day))
		}
		outcome = FullRecompute
	}

	t.BaseTime = midnight
	t.Station = s
	return outcome
}

func (t *TideTable) fill(i int, s *Station, dayStart time.Time) {
	fillDay(t.Levels[i*HoursPerDay:(i+1)*HoursPerDay], &t.Events[i], s, timeToSeconds(dayStart))
}

// Start returns the first instant the table covers.
func (t *TideTable) Start() time.Time {
	return t.BaseTime.Add(-day)
}

// End returns the first instant past the table.
func (t *TideTable) End() time.Time {
	return t.BaseTime.Add(2 * day)
}

// HourTime returns the instant of Levels[i].
func (t *TideTable) HourTime(i int) time.Time {
	return t.Start().Add(time.Duration(i) * time.Hour)
}

func (t *TideTable) series() interp.Series {
	return interp.Series{Step: hourSeconds, Values: t.Levels[:]}
}

// offset returns the seconds from the table start to at, or an error when
// the table is empty.
func (t *TideTable) offset(at time.Time) (float64, error) {
	if t.Station == nil {
		return 0, ErrOutOfRange
	}
	return at.Sub(t.Start()).Seconds(), nil
}

// LevelAt linearly interpolates the level at an instant. Outside the table
// it returns NaN and ErrOutOfRange.
func (t *TideTable) LevelAt(at time.Time) (float64, error) {
	x, err := t.offset(at)
	if err != nil {
		return math.NaN(), err
	}
	v, err := t.series().At(x)
	if err != nil {
		return math.NaN(), ErrOutOfRange
	}
	return v, nil
}

// RateAt returns the rate of change of the level in meters per hour from a
// difference of neighbouring samples. Outside the table it returns NaN and
// ErrOutOfRange.
func (t *TideTable) RateAt(at time.Time) (float64, error) {
	x, err := t.offset(at)
	if err != nil {
		return math.NaN(), err
	}
	v, err := t.series().SlopeAt(x)
	if err != nil {
		return math.NaN(), ErrOutOfRange
	}
	return v, nil
}

// EventsNear returns copies of the last event at or before at and the first
// event after it. Either may be nil. Both are nil when at is outside the
// table or inside its final hour.
func (t *TideTable) EventsNear(at time.Time) (prev, next *TidalEvent) {
	if t.Station == nil || at.Before(t.Start()) || !at.Before(t.End().Add(-time.Hour)) {
		return nil, nil
	}
	for i := range t.Events {
		for _, ev := range t.Events[i].Events() {
			if ev.Time.After(at) {
				next = &ev
				return prev, next
			}
			prev = &ev
		}
	}
	return prev, nil
}

// DayRange returns the lowest low water and the highest high water of day d
// (0 yesterday, 1 today, 2 tomorrow). A missing side is NaN; ok is false
// when the day has no events.
func (t *TideTable) DayRange(d int) (low, high float64, ok bool) {
	low, high = math.NaN(), math.NaN()
	if d < 0 || d >= TableDays {
		return low, high, false
	}
	for _, ev := range t.Events[d].Events() {
		switch ev.Kind {
		case Low:
			if math.IsNaN(low) || ev.Level < low {
				low = ev.Level
			}
		case High:
			if math.IsNaN(high) || ev.Level > high {
				high = ev.Level
			}
		}
		ok = true
	}
	return low, high, ok
}
