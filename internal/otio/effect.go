package otio

import "strings"

// Effect is a sealed interface for clip effects, evaluated in list order.
type Effect interface {
	// EffectName is the host-specific effect identifier
	// (e.g. "TimeWarp", "LinearTimeWarp", "FreezeFrame").
	EffectName() string
	// Name is the effect instance name (e.g. "TimeWarp3").
	Name() string
	// Metadata returns the effect metadata (never nil).
	Metadata() Metadata

	effect()
}

// LinearTimeWarp is a constant speed change.
// Negative scalars play the media backwards.
type LinearTimeWarp struct {
	InstanceName string
	Effect       string
	TimeScalar   float64
	Meta         Metadata
}

func (*LinearTimeWarp) effect() {}

func (e *LinearTimeWarp) EffectName() string { return e.Effect }
func (e *LinearTimeWarp) Name() string       { return e.InstanceName }
func (e *LinearTimeWarp) Metadata() Metadata { return nonNil(e.Meta) }

// FreezeFrame holds the first frame of the source range.
// It behaves as a LinearTimeWarp with a time scalar of 0.
type FreezeFrame struct {
	InstanceName string
	Meta         Metadata
}

func (*FreezeFrame) effect() {}

func (e *FreezeFrame) EffectName() string { return "FreezeFrame" }
func (e *FreezeFrame) Name() string       { return e.InstanceName }
func (e *FreezeFrame) Metadata() Metadata { return nonNil(e.Meta) }

// TimeEffect is a time effect the schema does not model specifically.
// Editorial hosts export non-linear retimes this way with a per-frame
// "lookup" offset curve in the metadata.
type TimeEffect struct {
	InstanceName string
	Effect       string
	Meta         Metadata
}

func (*TimeEffect) effect() {}

func (e *TimeEffect) EffectName() string { return e.Effect }
func (e *TimeEffect) Name() string       { return e.InstanceName }
func (e *TimeEffect) Metadata() Metadata { return nonNil(e.Meta) }

// IsTimeWarp reports whether the effect is a host time-warp curve.
func (e *TimeEffect) IsTimeWarp() bool {
	return strings.Contains(e.Effect, "TimeWarp")
}

// Lookup returns the per-frame offset curve, if any.
func (e *TimeEffect) Lookup() ([]float64, bool) {
	return e.Metadata().FloatSlice("lookup")
}

// GenericEffect is any non-time effect (color, blur, ...). The engine
// ignores it.
type GenericEffect struct {
	InstanceName string
	Effect       string
	Meta         Metadata
}

func (*GenericEffect) effect() {}

func (e *GenericEffect) EffectName() string { return e.Effect }
func (e *GenericEffect) Name() string       { return e.InstanceName }
func (e *GenericEffect) Metadata() Metadata { return nonNil(e.Meta) }
