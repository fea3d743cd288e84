package position

import "fmt"

// Range is a half-open [Start, End) byte range inside one document.
type Range struct {
	Start int
	End   int
}

func NewRange(start, end int) Range {
	if end < start {
		end = start
	}
	return Range{Start: start, End: end}
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) Empty() bool {
	return r.End <= r.Start
}

// Contains reports whether off falls inside the range. The end offset is
// included so that a cursor sitting right after the last character still
// belongs to the range.
func (r Range) Contains(off int) bool {
	return off >= r.Start && off <= r.End
}

func (r Range) ContainsRange(o Range) bool {
	return o.Start >= r.Start && o.End <= r.End
}

func (r Range) Overlaps(o Range) bool {
	if r.Empty() {
		return o.Contains(r.Start)
	}
	if o.Empty() {
		return r.Contains(o.Start)
	}
	return r.Start < o.End && o.Start < r.End
}

// Clamp forces off into [Start, End].
func (r Range) Clamp(off int) int {
	if off < r.Start {
		return r.Start
	}
	if off > r.End {
		return r.End
	}
	return off
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
