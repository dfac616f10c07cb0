package editorial

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/otioremap/internal/opentime"
	"github.com/roach88/otioremap/internal/otio"
)

// ConvertToPaddedPath replaces every bare "%d" token with "%0<padding>d".
// Paths without the token are returned unchanged.
//
//	ConvertToPaddedPath("plate.%d.exr", 4) // "plate.%04d.exr"
func ConvertToPaddedPath(path string, padding int) string {
	if !strings.Contains(path, "%d") {
		return path
	}
	return strings.ReplaceAll(path, "%d", fmt.Sprintf("%%0%dd", padding))
}

// Collection is a numbered file sequence: Head + padded index + Tail.
type Collection struct {
	Head    string `json:"head"`
	Tail    string `json:"tail"`
	Padding int    `json:"padding"`
	Indexes []int  `json:"indexes"`
}

// NewCollection creates a collection holding the given indexes.
func NewCollection(head, tail string, padding int, indexes ...int) *Collection {
	c := &Collection{Head: head, Tail: tail, Padding: padding}
	c.Add(indexes...)
	return c
}

// Add inserts indexes, keeping them sorted and unique.
func (c *Collection) Add(indexes ...int) {
	c.Indexes = append(c.Indexes, indexes...)
	slices.Sort(c.Indexes)
	c.Indexes = slices.Compact(c.Indexes)
}

// AddRange inserts [first, last).
func (c *Collection) AddRange(first, last int) {
	for i := first; i < last; i++ {
		c.Indexes = append(c.Indexes, i)
	}
	c.Add()
}

// Pattern returns the printf-style path, e.g. "plate.%04d.exr".
func (c *Collection) Pattern() string {
	if c.Padding > 0 {
		return fmt.Sprintf("%s%%0%dd%s", c.Head, c.Padding, c.Tail)
	}
	return c.Head + "%d" + c.Tail
}

// Path returns the file name of one index.
func (c *Collection) Path(index int) string {
	return fmt.Sprintf("%s%0*d%s", c.Head, c.Padding, index, c.Tail)
}

// Paths returns the file names of all indexes in order.
func (c *Collection) Paths() []string {
	out := make([]string, len(c.Indexes))
	for i, idx := range c.Indexes {
		out[i] = c.Path(idx)
	}
	return out
}

// Holes returns the indexes missing between the first and last index.
func (c *Collection) Holes() []int {
	var holes []int
	for i := 1; i < len(c.Indexes); i++ {
		for n := c.Indexes[i-1] + 1; n < c.Indexes[i]; n++ {
			holes = append(holes, n)
		}
	}
	return holes
}

// IsContiguous reports whether the collection has no holes.
func (c *Collection) IsContiguous() bool {
	return len(c.Holes()) == 0
}

// Ranges formats the indexes as "1001-1010, 1012".
func (c *Collection) Ranges() string {
	if len(c.Indexes) == 0 {
		return ""
	}
	var parts []string
	start, prev := c.Indexes[0], c.Indexes[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
			return
		}
		parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
	}
	for _, idx := range c.Indexes[1:] {
		if idx == prev+1 {
			prev = idx
			continue
		}
		flush()
		start, prev = idx, idx
	}
	flush()
	return strings.Join(parts, ", ")
}

// String returns "head%0Nd tail [ranges]".
func (c *Collection) String() string {
	return fmt.Sprintf("%s [%s]", c.Pattern(), c.Ranges())
}

// MakeSequenceCollection builds the frame collection a %-style sequence
// path covers over r. It returns ok=false when path is a single file.
//
// The head is the file name up to the first '%', the tail its extension,
// the indexes the frames [start, end) of r and the padding is read from
// metadata["padding"].
func MakeSequenceCollection(path string, r opentime.TimeRange, metadata otio.Metadata) (dir string, c *Collection, ok bool) {
	if !strings.Contains(path, "%") {
		return "", nil, false
	}

	dir, fileName := splitPath(path)
	head, _, _ := strings.Cut(fileName, "%")
	tail := extension(fileName)
	padding, _ := metadata.Int("padding")

	first, last := OTIORangeToFrameRange(r)
	c = &Collection{Head: head, Tail: tail, Padding: padding}
	c.AddRange(first, last)

	return dir, c, true
}

// splitPath splits at the last separator. The directory of a bare file name
// is empty; the directory of a root-level file is the root.
func splitPath(p string) (dir, file string) {
	i := strings.LastIndexAny(p, `/\`)
	if i < 0 {
		return "", p
	}
	dir = strings.TrimRight(p[:i], `/\`)
	if dir == "" {
		dir = p[:1]
	}
	return dir, p[i+1:]
}

// extension returns the final ".ext" of a file name, ignoring leading dots.
func extension(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndex(trimmed, ".")
	if i < 0 {
		return ""
	}
	return trimmed[i:]
}
