package geometry

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestNewDiscFrom2Points(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2     Vector2D
		wantCenter Vector2D
		wantR2     float64
	}{
		{"(-1,0) (1,0)", Vector2D{-1, 0}, Vector2D{1, 0}, Vector2D{0, 0}, 1},
		{"(-4,0) (0,0)", Vector2D{-4, 0}, Vector2D{0, 0}, Vector2D{-2, 0}, 4},
		{"(-3,2) (15,-5)", Vector2D{-3, 2}, Vector2D{15, -5}, Vector2D{6, -1.5}, 93.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDiscFrom2Points(tt.p1, tt.p2)
			if !vecEquals(d.Center, tt.wantCenter) {
				t.Errorf("center = %v; want %v", d.Center, tt.wantCenter)
			}
			if d.RadiusSquared != tt.wantR2 {
				t.Errorf("r² = %v; want %v", d.RadiusSquared, tt.wantR2)
			}
		})
	}
}

func TestNewDiscFrom2Points_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 500; i++ {
		p1 := Vector2D{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		p2 := Vector2D{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		d := NewDiscFrom2Points(p1, p2)
		if !d.Contains(p1) || !d.Contains(p2) {
			t.Fatalf("disc %v does not contain its defining points %v %v", d, p1, p2)
		}
		want := p1.DistanceSquaredTo(p2) / 4
		if math.Abs(d.RadiusSquared-want) > Epsilon*math.Max(1, want) {
			t.Fatalf("r² = %v; want |p1-p2|²/4 = %v", d.RadiusSquared, want)
		}
	}
}

func TestNewDiscFrom3Points(t *testing.T) {
	tests := []struct {
		name       string
		p1, p2, p3 Vector2D
		wantCenter Vector2D
		wantR2     float64
	}{
		{"unit circle", Vector2D{-1, 0}, Vector2D{1, 0}, Vector2D{0, 1}, Vector2D{0, 0}, 1},
		{"(1,1) (5,3) (2,4)", Vector2D{1, 1}, Vector2D{5, 3}, Vector2D{2, 4}, Vector2D{3, 2}, 5},
		{"(-6,9) (4.5,3) (17,7)", Vector2D{-6, 9}, Vector2D{4.5, 3}, Vector2D{17, 7},
			Vector2D{6.4166666667, 18.5416666667}, 245.2170138906},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDiscFrom3Points(tt.p1, tt.p2, tt.p3)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(d.Center.X-tt.wantCenter.X) > 1e-8 || math.Abs(d.Center.Y-tt.wantCenter.Y) > 1e-8 {
				t.Errorf("center = %v; want %v", d.Center, tt.wantCenter)
			}
			if math.Abs(d.RadiusSquared-tt.wantR2) > 1e-8 {
				t.Errorf("r² = %v; want %v", d.RadiusSquared, tt.wantR2)
			}
		})
	}
}

func TestNewDiscFrom3Points_Tight(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		p := [3]Vector2D{}
		for k := range p {
			p[k] = Vector2D{rng.Float64() * 100, rng.Float64() * 100}
		}
		d, err := NewDiscFrom3Points(p[0], p[1], p[2])
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", p, err)
		}
		shrunk := Disc{Center: d.Center, RadiusSquared: d.RadiusSquared * (1 - 1e-6)}
		excluded := false
		for _, q := range p {
			if !d.Contains(q) {
				t.Fatalf("disc %v misses defining point %v", d, q)
			}
			if !shrunk.Contains(q) {
				excluded = true
			}
		}
		if !excluded {
			t.Fatalf("shrinking %v kept all of %v inside", d, p)
		}
	}
}

func TestNewDiscFrom3Points_Collinear(t *testing.T) {
	_, err := NewDiscFrom3Points(Vector2D{0, 0}, Vector2D{1, 1}, Vector2D{2, 2})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("collinear points: err = %v; want ErrDegenerate", err)
	}
}

func TestDisc_Contains(t *testing.T) {
	d := Disc{Center: Vector2D{0, 0}, RadiusSquared: 4}
	if !d.Contains(Vector2D{2, 0}) {
		t.Error("boundary point should be contained")
	}
	if !d.Contains(Vector2D{1, 1}) {
		t.Error("inner point should be contained")
	}
	if d.Contains(Vector2D{2, 0.1}) {
		t.Error("outer point should not be contained")
	}
	if got := d.Radius(); got != 2 {
		t.Errorf("Radius = %v; want 2", got)
	}
}
