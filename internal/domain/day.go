package domain

import "time"

const (
	// HoursPerDay is the number of level samples per day.
	HoursPerDay = 24
	// MaxDayEvents is the capacity of a day's event list.
	MaxDayEvents = 6
	// MinEventGap is the smallest separation between two events of one day.
	MinEventGap = time.Hour

	hourSeconds = 3600.0
)

// DayEvents holds one day's events in time order. Empty slots are None and
// always sit after the filled ones.
type DayEvents [MaxDayEvents]TidalEvent

// Insert adds e if a slot is free, e is not None and no accepted event lies
// within MinEventGap of it. It reports whether e was accepted.
func (d *DayEvents) Insert(e TidalEvent) bool {
	n := d.Len()
	if n == MaxDayEvents || e.Kind == None {
		return false
	}
	for j := 0; j < n; j++ {
		gap := d[j].Time.Sub(e.Time)
		if gap < 0 {
			gap = -gap
		}
		if gap < MinEventGap {
			return false
		}
	}
	i := n
	for ; i > 0 && d[i-1].Time.After(e.Time); i-- {
		d[i] = d[i-1]
	}
	d[i] = e
	return true
}

// Len returns the number of filled slots.
func (d *DayEvents) Len() int {
	for i, e := range d {
		if e.Kind == None {
			return i
		}
	}
	return MaxDayEvents
}

// Events returns the filled slots.
func (d *DayEvents) Events() []TidalEvent {
	out := make([]TidalEvent, d.Len())
	copy(out, d[:])
	return out
}

// FillDay predicts the 24 hourly levels of the day starting at dayStart and
// collects the events found in the hour-wide window around each sample.
func FillDay(s *Station, dayStart time.Time) (levels [HoursPerDay]float64, events DayEvents) {
	fillDay(levels[:], &events, s, timeToSeconds(dayStart))
	return levels, events
}

func fillDay(levels []float64, events *DayEvents, s *Station, start float64) {
	*events = DayEvents{}
	carry := 0.0
	for h := 0; h < HoursPerDay; h++ {
		t := start + float64(h)*hourSeconds
		levels[h] = predictAt(t, s, Height)
		var ev TidalEvent
		ev, carry = findEvent(s, t-hourSeconds/2, t+hourSeconds/2, carry)
		events.Insert(ev)
	}
}
