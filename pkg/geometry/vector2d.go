package geometry

import (
	"fmt"
	"math"
)

// Epsilon bounds the rounding error tolerated by disc containment.
const Epsilon = 1e-9

// Vector2D is a robot position, or the displacement between two positions.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

func (v Vector2D) Add(w Vector2D) Vector2D {
	return Vector2D{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub is the displacement leading from w to v.
func (v Vector2D) Sub(w Vector2D) Vector2D {
	return Vector2D{X: v.X - w.X, Y: v.Y - w.Y}
}

func (v Vector2D) Mul(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

func (v Vector2D) Dot(w Vector2D) float64 {
	return v.X*w.X + v.Y*w.Y
}

// LenSqr is the squared norm; visibility tests compare it to the squared
// vision range and never take a root.
func (v Vector2D) LenSqr() float64 {
	return v.Dot(v)
}

// Len is the norm, without overflow for large coordinates.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vector2D) DistanceSquaredTo(w Vector2D) float64 {
	return v.Sub(w).LenSqr()
}

// IsFinite is false when a coordinate is NaN or infinite.
func (v Vector2D) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
