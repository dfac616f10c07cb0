package opentime

import (
	"fmt"
	"math"
)

// TimeRange is a span starting at StartTime lasting Duration.
// Arithmetic assumes both times share a rate.
type TimeRange struct {
	StartTime RationalTime `json:"start_time"`
	Duration  RationalTime `json:"duration"`
}

// NewTimeRange creates a TimeRange.
func NewTimeRange(start, duration RationalTime) TimeRange {
	return TimeRange{StartTime: start, Duration: duration}
}

// RangeFromStartEnd creates the range [start, endExclusive) at start's rate.
func RangeFromStartEnd(start, endExclusive RationalTime) TimeRange {
	return TimeRange{
		StartTime: start,
		Duration:  endExclusive.Sub(start).RescaledTo(start.Rate),
	}
}

// EndTimeExclusive returns the first instant after the range.
func (r TimeRange) EndTimeExclusive() RationalTime {
	return r.Duration.Add(r.StartTime.RescaledTo(r.Duration.Rate))
}

// EndTimeInclusive returns the last whole unit inside the range.
// A range shorter than one unit returns its start time.
func (r TimeRange) EndTimeInclusive() RationalTime {
	et := r.EndTimeExclusive()
	if et.Sub(r.StartTime.RescaledTo(r.Duration.Rate)).Value > 1 {
		if r.Duration.Value != math.Floor(r.Duration.Value) {
			return RationalTime{Value: math.Floor(et.Value), Rate: et.Rate}
		}
		return et.Sub(RationalTime{Value: 1, Rate: r.Duration.Rate})
	}
	return r.StartTime
}

// Contains reports whether t lies in [start, end).
func (r TimeRange) Contains(t RationalTime) bool {
	return r.StartTime.Compare(t) <= 0 && t.Compare(r.EndTimeExclusive()) < 0
}

// RescaledTo expresses both bounds at rate.
func (r TimeRange) RescaledTo(rate float64) TimeRange {
	return TimeRange{
		StartTime: r.StartTime.RescaledTo(rate),
		Duration:  r.Duration.RescaledTo(rate),
	}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("TimeRange(%s, %s)", r.StartTime, r.Duration)
}
