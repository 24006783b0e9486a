package geometry

import "math"

// Segment is a directed segment going from Start to End.
// Its delta and norm are computed once at construction.
type Segment struct {
	Start Vector2D
	End   Vector2D
	Delta Vector2D
	Norm  float64
}

// NewSegment builds the directed segment start -> end.
func NewSegment(start, end Vector2D) Segment {
	delta := end.Sub(start)
	return Segment{Start: start, End: end, Delta: delta, Norm: delta.Len()}
}

// ScalarProduct returns the dot product of the two segments' directions.
func (s Segment) ScalarProduct(other Segment) float64 {
	return s.Delta.Dot(other.Delta)
}

// CosSin returns cos θ and sin θ of the (unsigned) angle between the two segments.
// sin θ is always >= 0. Zero-length segments yield cos θ = 1, sin θ = 0.
func (s Segment) CosSin(other Segment) (cos, sin float64) {
	if s.Norm == 0 || other.Norm == 0 {
		return 1, 0
	}
	cos = s.ScalarProduct(other) / (s.Norm * other.Norm)
	// rounding can push |cos| slightly above 1
	cos = math.Max(-1, math.Min(1, cos))
	sin = math.Sqrt(1 - cos*cos)
	return cos, sin
}

// Resize returns a segment with the same start and orientation but a norm of newNorm.
// A zero-length segment cannot be oriented and is returned unchanged.
func (s Segment) Resize(newNorm float64) Segment {
	if s.Norm == newNorm || s.Norm == 0 {
		return s
	}
	return NewSegment(s.Start, s.Start.Add(s.Delta.Mul(newNorm/s.Norm)))
}
