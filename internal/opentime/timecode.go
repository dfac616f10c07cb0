package opentime

import (
	"errors"
	"fmt"
	"math"
)

// ErrNegativeTimecode is returned when a negative time is formatted as timecode.
var ErrNegativeTimecode = errors.New("negative values are not supported for timecode")

// InferDropFrame reports whether rate belongs to the NTSC drop-frame family
// (29.97, 59.94).
func InferDropFrame(rate float64) bool {
	for _, df := range []float64{30000.0 / 1001.0, 60000.0 / 1001.0} {
		if math.Abs(rate-df) < 0.01 {
			return true
		}
	}
	return false
}

// ToTimecode formats t as HH:MM:SS:FF at rate. Drop-frame timecode uses
// ';' as the frame separator.
func (t RationalTime) ToTimecode(rate float64, dropFrame bool) (string, error) {
	if rate <= 0 {
		return "", fmt.Errorf("invalid timecode rate %g", rate)
	}
	if t.Value < 0 {
		return "", ErrNegativeTimecode
	}

	nominal := int(math.Ceil(rate))
	frames := int(math.Round(t.ValueRescaledTo(rate)))
	sep := ":"

	if dropFrame {
		sep = ";"
		dropped := int(math.Round(rate * 0.066666))
		perTenMinutes := int(math.Round(rate * 60 * 10))
		perMinute := nominal*60 - dropped

		tens := frames / perTenMinutes
		rem := frames % perTenMinutes
		if rem > dropped {
			frames += dropped*9*tens + dropped*((rem-dropped)/perMinute)
		} else {
			frames += dropped * 9 * tens
		}
	}

	ff := frames % nominal
	totalSeconds := frames / nominal
	ss := totalSeconds % 60
	mm := (totalSeconds / 60) % 60
	hh := totalSeconds / 3600

	return fmt.Sprintf("%02d:%02d:%02d%s%02d", hh, mm, ss, sep, ff), nil
}
