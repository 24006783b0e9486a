package swarm

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/geometry"
)

// Mode selects how far a robot of the plane moves toward its target.
type Mode string

const (
	// ModeUnconstrained moves a robot straight to the center of the minimal
	// disc enclosing what it sees.
	ModeUnconstrained Mode = "center"
	// ModeConnectivity moves toward the same center, but never so far that a
	// robot visible before the move could end up out of range.
	ModeConnectivity Mode = "connectivity"
)

// ParseMode maps a wire value to a Mode. The empty string means ModeConnectivity.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeConnectivity:
		return ModeConnectivity, nil
	case ModeUnconstrained:
		return ModeUnconstrained, nil
	default:
		return "", fmt.Errorf("unknown 2D mode %q (want %s or %s)", s, ModeUnconstrained, ModeConnectivity)
	}
}

// StepPlane computes the generation following prev on the plane.
// The result keeps the order of prev. Every target is computed from prev only.
// Colours belong to the line and are cleared.
func StepPlane(prev []Robot, vision float64, mode Mode, index IndexKind, rng *rand.Rand) ([]Robot, error) {
	state := cloneRobots(prev)
	for i := range state {
		state[i].Colour = ""
	}
	hood := NewNeighborhood(index, prev, vision)

	for i, me := range prev {
		if me.Faulty {
			continue
		}
		visible := hood.Visible(i)
		unique := UniquePositions(visible)
		if len(unique) < 2 {
			continue
		}

		points := make([]geometry.Vector2D, len(unique))
		for k, r := range unique {
			points[k] = r.Position()
		}
		disc, err := geometry.MinimalEnclosingDisc(points, rng)
		if err != nil {
			return nil, fmt.Errorf("robot %q: %w", me.Label, err)
		}

		next := disc.Center
		if mode == ModeConnectivity {
			next = connectedMove(me, disc.Center, visible, vision)
		}
		state[i].X, state[i].Y = next.X, next.Y
	}
	return state, nil
}

// connectedMove returns the point reached by moving me toward target as far as
// every other visible robot allows.
func connectedMove(me Robot, target geometry.Vector2D, visible []Robot, vision float64) geometry.Vector2D {
	toTarget := geometry.NewSegment(me.Position(), target)
	if toTarget.Norm == 0 {
		return me.Position()
	}

	step := toTarget.Norm
	for _, other := range visible {
		if other.Label == me.Label {
			continue
		}
		step = math.Min(step, maxStep(toTarget, geometry.NewSegment(me.Position(), other.Position()), vision))
	}
	step = math.Max(step, 0)

	if step == toTarget.Norm {
		return target
	}
	return toTarget.Resize(step).End
}

// maxStep is the longest move along toTarget keeping the mover inside the disc of
// radius vision/2 centered halfway to the neighbor:
//
//	l = (d/2)·cos θ + sqrt((vision/2)² − (d/2·sin θ)²)
//
// A neighbor sharing the mover's position gives vision/2. The radicand is only
// negative through rounding (the neighbor is visible, so d <= vision); it is
// clamped at 0.
func maxStep(toTarget, toNeighbor geometry.Segment, vision float64) float64 {
	cos, sin := toTarget.CosSin(toNeighbor)
	half := toNeighbor.Norm / 2
	radicand := (vision/2)*(vision/2) - (half*sin)*(half*sin)
	return half*cos + math.Sqrt(math.Max(radicand, 0))
}
