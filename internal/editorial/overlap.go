package editorial

import "github.com/roach88/otioremap/internal/opentime"

// IsOverlappingOTIORanges classifies test against main using discrete frame
// bounds.
//
// In non-strict mode any contact counts: test covers main, lies inside it,
// or overlaps either edge. In strict mode only "test covers main" counts;
// collectors use it to decide that a clip spans the whole shot.
func IsOverlappingOTIORanges(test, main opentime.TimeRange, strict bool) bool {
	testStart, testEnd := OTIORangeToFrameRange(test)
	mainStart, mainEnd := OTIORangeToFrameRange(main)

	covering := testStart <= mainStart && testEnd >= mainEnd
	if strict {
		return covering
	}

	inside := testStart >= mainStart && testEnd <= mainEnd
	overlapRight := testStart <= mainEnd && testEnd >= mainEnd
	overlapLeft := testEnd >= mainStart && testStart <= mainStart

	return covering || inside || overlapRight || overlapLeft
}
