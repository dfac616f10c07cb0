package editorial

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine failures.
type ErrorCode string

const (
	// ErrCodeNotSequence indicates a sequence-only operation was given a
	// clip backed by a single file.
	ErrCodeNotSequence ErrorCode = "NOT_SEQUENCE"

	// ErrCodeRateMismatch indicates the requested range and the media do not
	// share a rate.
	ErrCodeRateMismatch ErrorCode = "RATE_MISMATCH"

	// ErrCodeNoAvailableRange indicates the clip's media extent is unknown.
	ErrCodeNoAvailableRange ErrorCode = "NO_AVAILABLE_RANGE"

	// ErrCodeUnsupportedTimeWarp indicates a chain of time warps whose later
	// curves reach outside the frames resolved by the first one, or a curve
	// with fewer values than the shot has frames.
	ErrCodeUnsupportedTimeWarp ErrorCode = "UNSUPPORTED_TIMEWARP"
)

// RangeError is returned for malformed clips and unsupported retimes.
// The caller decides whether to skip the shot or stop.
type RangeError struct {
	Code    ErrorCode
	Message string

	// Clip names the offending clip, if known.
	Clip string

	// Details carries values useful in diagnostics (rates, indexes).
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Clip != "" {
		return fmt.Sprintf("%s: %s (clip=%s)", e.Code, e.Message, e.Clip)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *RangeError) Unwrap() error {
	return e.Err
}

// IsInvalidInput reports whether err signals a malformed clip or range
// (not a sequence, mismatched rates, unknown media extent).
func IsInvalidInput(err error) bool {
	var re *RangeError
	if !errors.As(err, &re) {
		return false
	}
	switch re.Code {
	case ErrCodeNotSequence, ErrCodeRateMismatch, ErrCodeNoAvailableRange:
		return true
	}
	return false
}

// IsRateMismatch reports whether err is a rate mismatch.
func IsRateMismatch(err error) bool {
	var re *RangeError
	return errors.As(err, &re) && re.Code == ErrCodeRateMismatch
}

// IsNotSequence reports whether err rejected a non-sequence clip.
func IsNotSequence(err error) bool {
	var re *RangeError
	return errors.As(err, &re) && re.Code == ErrCodeNotSequence
}

// IsUnsupportedTimeWarp reports whether err is the unsupported time-warp
// composition failure.
func IsUnsupportedTimeWarp(err error) bool {
	var re *RangeError
	return errors.As(err, &re) && re.Code == ErrCodeUnsupportedTimeWarp
}

func newRateMismatchError(clip string, mediaRate, rangeRate float64) *RangeError {
	return &RangeError{
		Code:    ErrCodeRateMismatch,
		Message: "range rate does not match media rate",
		Clip:    clip,
		Details: map[string]string{
			"media_rate": fmt.Sprintf("%g", mediaRate),
			"range_rate": fmt.Sprintf("%g", rangeRate),
		},
	}
}

func newUnsupportedTimeWarpError(clip string, warp, frame, target int) *RangeError {
	return &RangeError{
		Code:    ErrCodeUnsupportedTimeWarp,
		Message: "consecutive time warps reach outside the computed range",
		Clip:    clip,
		Details: map[string]string{
			"warp":   fmt.Sprintf("%d", warp),
			"frame":  fmt.Sprintf("%d", frame),
			"target": fmt.Sprintf("%d", target),
		},
	}
}

func newShortTimeWarpError(clip string, warp, length, frames int) *RangeError {
	return &RangeError{
		Code:    ErrCodeUnsupportedTimeWarp,
		Message: "time warp curve is shorter than the shot",
		Clip:    clip,
		Details: map[string]string{
			"warp":   fmt.Sprintf("%d", warp),
			"length": fmt.Sprintf("%d", length),
			"frames": fmt.Sprintf("%d", frames),
		},
	}
}
