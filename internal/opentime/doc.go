// Package opentime provides rational time values for editorial computation.
//
// A RationalTime is a value counted at a rate (frames at fps, samples at
// a sample rate). Values at different rates are only comparable after an
// explicit rescale; arithmetic between mismatched rates expresses the
// result at the larger rate.
//
// Frame conversion truncates toward zero. Callers that need rounding
// must round the value before converting.
//
// This package imports nothing internal.
package opentime
