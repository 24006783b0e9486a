package swarm

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/geometry"
)

// ErrInvalidState is returned when a generation fails the boundary checks
// (duplicate labels, non-finite coordinates, empty state, bad vision range).
var ErrInvalidState = errors.New("invalid swarm state")

// Dimension selects the space robots live in.
type Dimension int

const (
	Line  Dimension = 1
	Plane Dimension = 2
)

func (d Dimension) String() string {
	switch d {
	case Line:
		return "1D"
	case Plane:
		return "2D"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// Robot is the snapshot of one robot in one generation.
// It is a value: kernels copy it, they never mutate the caller's robots.
type Robot struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y,omitempty"`
	Faulty bool    `json:"faulty"`
	// Colour is the mutual chain tag, only assigned on the line.
	Colour string `json:"colour,omitempty"`
}

// Position returns the robot coordinates as a point of the plane (Y is 0 on the line).
func (r Robot) Position() geometry.Vector2D {
	return geometry.Vector2D{X: r.X, Y: r.Y}
}

func (r Robot) String() string {
	if r.Faulty {
		return fmt.Sprintf("%s%s[faulty]", r.Label, r.Position())
	}
	return fmt.Sprintf("%s%s", r.Label, r.Position())
}

// Generation is the state of the whole swarm after Iter rounds.
type Generation struct {
	Iter   int     `json:"iter"`
	Robots []Robot `json:"newState"`
}

// Find returns the robot with the given label.
func (g Generation) Find(label string) (Robot, bool) {
	for _, r := range g.Robots {
		if r.Label == label {
			return r, true
		}
	}
	return Robot{}, false
}

// ValidateState checks the invariants every generation must satisfy before it
// reaches a kernel: a non-empty state, unique labels and finite coordinates.
func ValidateState(robots []Robot) error {
	if len(robots) == 0 {
		return fmt.Errorf("%w: no robots", ErrInvalidState)
	}
	seen := make(map[string]struct{}, len(robots))
	for i, r := range robots {
		if r.Label == "" {
			return fmt.Errorf("%w: robot #%d has an empty label", ErrInvalidState, i)
		}
		if _, dup := seen[r.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidState, r.Label)
		}
		seen[r.Label] = struct{}{}
		if !r.Position().IsFinite() {
			return fmt.Errorf("%w: robot %q has non finite coordinates (%v, %v)", ErrInvalidState, r.Label, r.X, r.Y)
		}
	}
	return nil
}

// ValidateRange checks the vision range is a positive finite number.
func ValidateRange(vision float64) error {
	if !(vision > 0) || math.IsInf(vision, 0) {
		return fmt.Errorf("%w: vision range must be a positive finite number, got %v", ErrInvalidState, vision)
	}
	return nil
}

// SortByX sorts robots ascending on X in place. The sort is stable so that
// robots sharing a position keep their relative order.
func SortByX(robots []Robot) {
	slices.SortStableFunc(robots, func(a, b Robot) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})
}

func cloneRobots(robots []Robot) []Robot {
	return append([]Robot(nil), robots...)
}
