package opentime

import (
	"fmt"
	"math"
)

// RationalTime is a point in time (or a duration) expressed as Value units
// at Rate units per second.
type RationalTime struct {
	Value float64 `json:"value"`
	Rate  float64 `json:"rate"`
}

// New creates a RationalTime.
func New(value, rate float64) RationalTime {
	return RationalTime{Value: value, Rate: rate}
}

// FromFrames creates a RationalTime from a frame number.
// The frame number is truncated to a whole frame first.
func FromFrames(frame float64, rate float64) RationalTime {
	return RationalTime{Value: math.Trunc(frame), Rate: rate}
}

// FromSeconds creates a RationalTime at rate from a duration in seconds.
func FromSeconds(seconds float64, rate float64) RationalTime {
	return RationalTime{Value: seconds * rate, Rate: rate}
}

// IsInvalid reports whether the time cannot be used in arithmetic.
func (t RationalTime) IsInvalid() bool {
	return math.IsNaN(t.Value) || math.IsNaN(t.Rate) || t.Rate <= 0
}

// ValueRescaledTo returns the value expressed at rate.
func (t RationalTime) ValueRescaledTo(rate float64) float64 {
	if rate == t.Rate {
		return t.Value
	}
	return t.Value * rate / t.Rate
}

// RescaledTo returns the same instant expressed at rate.
func (t RationalTime) RescaledTo(rate float64) RationalTime {
	return RationalTime{Value: t.ValueRescaledTo(rate), Rate: rate}
}

// ToFrames returns the whole-frame part of the value at its own rate.
func (t RationalTime) ToFrames() int {
	return int(t.Value)
}

// ToFramesAt returns the whole-frame part of the value rescaled to rate.
func (t RationalTime) ToFramesAt(rate float64) int {
	return int(t.ValueRescaledTo(rate))
}

// ToSeconds returns the time in seconds.
func (t RationalTime) ToSeconds() float64 {
	return t.Value / t.Rate
}

// Add returns t + o. Mismatched rates resolve to the larger rate.
func (t RationalTime) Add(o RationalTime) RationalTime {
	if t.Rate < o.Rate {
		return RationalTime{Value: t.ValueRescaledTo(o.Rate) + o.Value, Rate: o.Rate}
	}
	return RationalTime{Value: o.ValueRescaledTo(t.Rate) + t.Value, Rate: t.Rate}
}

// Sub returns t - o. Mismatched rates resolve to the larger rate.
func (t RationalTime) Sub(o RationalTime) RationalTime {
	if t.Rate < o.Rate {
		return RationalTime{Value: t.ValueRescaledTo(o.Rate) - o.Value, Rate: o.Rate}
	}
	return RationalTime{Value: t.Value - o.ValueRescaledTo(t.Rate), Rate: t.Rate}
}

// Compare orders two times by instant, regardless of rate.
// Returns -1, 0 or +1.
func (t RationalTime) Compare(o RationalTime) int {
	a := t.ToSeconds()
	b := o.ToSeconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether both times denote the same instant.
func (t RationalTime) Equal(o RationalTime) bool {
	return t.Compare(o) == 0
}

// AlmostEqual reports whether the two values differ by at most delta once
// o is expressed at t's rate.
func (t RationalTime) AlmostEqual(o RationalTime, delta float64) bool {
	return math.Abs(t.Value-o.ValueRescaledTo(t.Rate)) <= delta
}

func (t RationalTime) String() string {
	return fmt.Sprintf("RationalTime(%g, %g)", t.Value, t.Rate)
}
