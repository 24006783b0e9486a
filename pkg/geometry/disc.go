package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerate is returned when a disc cannot be built from the given points,
// e.g. three collinear points or fewer than two points.
var ErrDegenerate = errors.New("degenerate input")

// Disc is a closed disc. The radius is kept squared throughout to avoid
// needless square roots and the precision they cost.
type Disc struct {
	Center        Vector2D `json:"center"`
	RadiusSquared float64  `json:"radiusSquared"`
}

// NewDiscFrom2Points returns the smallest disc having p1 and p2 on its boundary,
// that is the disc of diameter [p1, p2].
func NewDiscFrom2Points(p1, p2 Vector2D) Disc {
	center := p1.Add(p2).Mul(0.5)
	return Disc{
		Center:        center,
		RadiusSquared: p1.DistanceSquaredTo(center),
	}
}

// NewDiscFrom3Points returns the unique disc having p1, p2 and p3 on its boundary.
// The center and radius come from the closed-form expansion of the determinant
//
//	| x²+y²    x   y   1 |
//	| x1²+y1²  x1  y1  1 |
//	| x2²+y2²  x2  y2  1 |
//	| x3²+y3²  x3  y3  1 |
//
// through its four first-row minors. Collinear points make M11 vanish and
// ErrDegenerate is returned.
func NewDiscFrom3Points(p1, p2, p3 Vector2D) (Disc, error) {
	x1, y1 := p1.X, p1.Y
	x2, y2 := p2.X, p2.Y
	x3, y3 := p3.X, p3.Y

	a21 := x1*x1 + y1*y1
	a31 := x2*x2 + y2*y2
	a41 := x3*x3 + y3*y3

	m11 := x1*(y2-y3) - y1*(x2-x3) + x2*y3 - y2*x3
	if m11 == 0 {
		return Disc{}, fmt.Errorf("%w: points %s %s %s are collinear", ErrDegenerate, p1, p2, p3)
	}
	m12 := a21*(y2-y3) - y1*(a31-a41) + a31*y3 - y2*a41
	m13 := a21*(x2-x3) - x1*(a31-a41) + a31*x3 - x2*a41
	m14 := a21*(x2*y3-y2*x3) - x1*(a31*y3-y2*a41) + y1*(a31*x3-x2*a41)

	x := m12 / m11 / 2
	y := -m13 / m11 / 2
	d := Disc{
		Center:        Vector2D{X: x, Y: y},
		RadiusSquared: m14/m11 + x*x + y*y,
	}
	if !d.Center.IsFinite() || !isFinite(d.RadiusSquared) || d.RadiusSquared < 0 {
		return Disc{}, fmt.Errorf("%w: points %s %s %s give no finite disc", ErrDegenerate, p1, p2, p3)
	}
	return d, nil
}

// Radius returns the (non squared) radius of the disc.
func (d Disc) Radius() float64 {
	return math.Sqrt(d.RadiusSquared)
}

// Contains reports whether p lies inside the disc or on its boundary.
// Points off the boundary by less than Epsilon (relative to the squared radius)
// are accepted, so that the points a disc was built from always test as contained.
func (d Disc) Contains(p Vector2D) bool {
	return p.DistanceSquaredTo(d.Center) <= d.RadiusSquared+Epsilon*math.Max(1, d.RadiusSquared)
}

func (d Disc) String() string {
	return fmt.Sprintf("disc{center: %s, r²: %.4f}", d.Center, d.RadiusSquared)
}
