package editor

import "fmt"

// Region is a selection within a buffer, expressed as byte offsets.
// A is the anchor and B the caret, so B may be smaller than A for a reversed selection.
type Region struct {
	A int
	B int
}

// Point returns an empty Region positioned at offset.
func Point(offset int) Region {
	return Region{A: offset, B: offset}
}

func (r Region) String() string {
	return fmt.Sprintf("(%d, %d)", r.A, r.B)
}

// Begin returns the smaller of the two offsets.
func (r Region) Begin() int {
	return min(r.A, r.B)
}

// End returns the larger of the two offsets.
func (r Region) End() int {
	return max(r.A, r.B)
}

// Empty reports whether the region is a caret with no extent.
func (r Region) Empty() bool {
	return r.A == r.B
}

// Clamp restricts both offsets to [0, size].
func (r Region) Clamp(size int) Region {
	clamp := func(v int) int {
		return max(0, min(v, size))
	}

	return Region{A: clamp(r.A), B: clamp(r.B)}
}
