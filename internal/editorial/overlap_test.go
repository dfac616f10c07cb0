package editorial

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOverlappingOTIORanges(t *testing.T) {
	main := tr(100, 100, 24) // frames [100, 200)

	tests := []struct {
		name       string
		test       [2]float64 // start, duration
		wantLoose  bool
		wantStrict bool
	}{
		{"inside", [2]float64{150, 10}, true, false},
		{"covering", [2]float64{50, 200}, true, true},
		{"exact", [2]float64{100, 100}, true, true},
		{"overlap left", [2]float64{50, 100}, true, false},
		{"overlap right", [2]float64{150, 100}, true, false},
		{"touching end", [2]float64{200, 10}, true, false},
		{"before", [2]float64{0, 50}, false, false},
		{"after", [2]float64{250, 10}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test := tr(tt.test[0], tt.test[1], 24)
			assert.Equal(t, tt.wantLoose, IsOverlappingOTIORanges(test, main, false), "non-strict")
			assert.Equal(t, tt.wantStrict, IsOverlappingOTIORanges(test, main, true), "strict")
		})
	}
}

func TestIsOverlappingOTIORanges_StrictIsNotSymmetric(t *testing.T) {
	outer := tr(50, 200, 24)
	inner := tr(150, 10, 24)

	assert.True(t, IsOverlappingOTIORanges(outer, inner, true))
	assert.False(t, IsOverlappingOTIORanges(inner, outer, true))
}
