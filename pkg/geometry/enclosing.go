package geometry

import (
	"fmt"
	"math/rand/v2"
)

// MinimalEnclosingDisc returns the smallest disc containing every point.
//
// It is the randomized incremental algorithm (Welzl, iterative form): the points
// are shuffled, then a working disc grows one point at a time and is rebuilt with
// that point on its boundary whenever it falls outside. Expected time is O(n)
// thanks to the shuffle. The caller's slice is never reordered.
//
// rng drives the shuffle; nil uses the package level source.
// At least 2 points are required, and no 3 of the boundary candidates may be
// collinear (duplicates must be filtered beforehand), otherwise ErrDegenerate is returned.
func MinimalEnclosingDisc(points []Vector2D, rng *rand.Rand) (Disc, error) {
	if len(points) < 2 {
		return Disc{}, fmt.Errorf("%w: need at least 2 points, got %d", ErrDegenerate, len(points))
	}

	shuffled := make([]Vector2D, len(points))
	copy(shuffled, points)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rng != nil {
		rng.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	return minDisc(shuffled)
}

func minDisc(p []Vector2D) (Disc, error) {
	d := NewDiscFrom2Points(p[0], p[1])
	for i := 2; i < len(p); i++ {
		if d.Contains(p[i]) {
			continue
		}
		var err error
		if d, err = minDiscWithPoint(p[:i], p[i]); err != nil {
			return Disc{}, err
		}
	}
	return d, nil
}

// minDiscWithPoint is the smallest disc containing p with q on its boundary.
func minDiscWithPoint(p []Vector2D, q Vector2D) (Disc, error) {
	d := NewDiscFrom2Points(p[0], q)
	for j := 1; j < len(p); j++ {
		if d.Contains(p[j]) {
			continue
		}
		var err error
		if d, err = minDiscWith2Points(p[:j], p[j], q); err != nil {
			return Disc{}, err
		}
	}
	return d, nil
}

// minDiscWith2Points is the smallest disc containing p with q1 and q2 on its boundary.
func minDiscWith2Points(p []Vector2D, q1, q2 Vector2D) (Disc, error) {
	d := NewDiscFrom2Points(q1, q2)
	for _, pk := range p {
		if d.Contains(pk) {
			continue
		}
		var err error
		if d, err = NewDiscFrom3Points(q1, q2, pk); err != nil {
			return Disc{}, err
		}
	}
	return d, nil
}
