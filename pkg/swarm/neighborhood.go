package swarm

import (
	"fmt"
	"math"
	"slices"

	"github.com/dhconnelly/rtreego"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/geometry"
)

// Neighborhood answers 2D visibility queries for one generation.
// Visible must return the same robots, in the same (input) order, as VisibleOnPlane.
type Neighborhood interface {
	Visible(index int) []Robot
}

// IndexKind selects the spatial index backing a Neighborhood.
type IndexKind string

const (
	IndexGrid  IndexKind = "grid"
	IndexRTree IndexKind = "rtree"
	IndexScan  IndexKind = "scan"
)

// ParseIndexKind maps a config value to an IndexKind. The empty string means grid.
func ParseIndexKind(s string) (IndexKind, error) {
	switch IndexKind(s) {
	case "", IndexGrid:
		return IndexGrid, nil
	case IndexRTree, IndexScan:
		return IndexKind(s), nil
	default:
		return "", fmt.Errorf("unknown neighborhood index %q (want grid, rtree or scan)", s)
	}
}

// NewNeighborhood builds the index of the given kind over state.
func NewNeighborhood(kind IndexKind, state []Robot, vision float64) Neighborhood {
	switch kind {
	case IndexRTree:
		return newTreeNeighborhood(state, vision)
	case IndexScan:
		return scanNeighborhood{state: state, vision: vision}
	default:
		if !gridFits(state, vision) {
			return scanNeighborhood{state: state, vision: vision}
		}
		return newGridNeighborhood(state, vision)
	}
}

// scanNeighborhood is the brute force reference.
type scanNeighborhood struct {
	state  []Robot
	vision float64
}

func (s scanNeighborhood) Visible(index int) []Robot {
	return VisibleOnPlane(s.state, s.state[index], s.vision)
}

// queryReach pads the vision range so that rounding never drops a robot
// sitting exactly at vision distance from the broad phase box.
func queryReach(me Robot, vision float64) float64 {
	return vision + geometry.Epsilon*(1+vision+math.Abs(me.X)+math.Abs(me.Y))
}

// ---------------------------------------------------------------------
// Spatial hash grid
// ---------------------------------------------------------------------

type gridKey struct {
	x, y int
}

// maxGridCell bounds cell coordinates: beyond it the int conversion may
// overflow and the query padding spans too many cells to be worth walking.
const maxGridCell = 1 << 20

// gridFits reports whether every robot lands within maxGridCell cells of the
// origin. Swarms that do not are scanned instead.
func gridFits(state []Robot, vision float64) bool {
	for _, r := range state {
		if !(math.Abs(r.X/vision) <= maxGridCell && math.Abs(r.Y/vision) <= maxGridCell) {
			return false
		}
	}
	return true
}

// gridNeighborhood buckets robots in square cells as wide as the vision range,
// so everything a robot can see lies in the 3x3 block of cells around it.
type gridNeighborhood struct {
	state    []Robot
	vision   float64
	cellSize float64
	grid     map[gridKey][]int
}

func newGridNeighborhood(state []Robot, vision float64) *gridNeighborhood {
	g := &gridNeighborhood{
		state:    state,
		vision:   vision,
		cellSize: vision,
		grid:     make(map[gridKey][]int),
	}
	for i, r := range state {
		key := g.cellOf(r.X, r.Y)
		g.grid[key] = append(g.grid[key], i)
	}
	return g
}

func (g *gridNeighborhood) cellOf(x, y float64) gridKey {
	return gridKey{x: int(math.Floor(x / g.cellSize)), y: int(math.Floor(y / g.cellSize))}
}

func (g *gridNeighborhood) Visible(index int) []Robot {
	me := g.state[index]
	visionSq := g.vision * g.vision

	reach := queryReach(me, g.vision)
	lo := g.cellOf(me.X-reach, me.Y-reach)
	hi := g.cellOf(me.X+reach, me.Y+reach)

	var found []int
	for i := lo.x; i <= hi.x; i++ {
		for j := lo.y; j <= hi.y; j++ {
			for _, k := range g.grid[gridKey{x: i, y: j}] {
				if g.state[k].Position().DistanceSquaredTo(me.Position()) <= visionSq {
					found = append(found, k)
				}
			}
		}
	}
	return g.collect(found)
}

func (g *gridNeighborhood) collect(indices []int) []Robot {
	slices.Sort(indices)
	visible := make([]Robot, len(indices))
	for i, k := range indices {
		visible[i] = g.state[k]
	}
	return visible
}

// ---------------------------------------------------------------------
// R-tree
// ---------------------------------------------------------------------

type indexedRobot struct {
	index  int
	bounds rtreego.Rect
}

func (r *indexedRobot) Bounds() rtreego.Rect {
	return r.bounds
}

// treeNeighborhood is better suited than the grid to sparse swarms spread far
// beyond the vision range.
type treeNeighborhood struct {
	state  []Robot
	vision float64
	tree   *rtreego.Rtree
}

func newTreeNeighborhood(state []Robot, vision float64) *treeNeighborhood {
	objs := make([]rtreego.Spatial, len(state))
	for i, r := range state {
		objs[i] = &indexedRobot{index: i, bounds: rtreego.Point{r.X, r.Y}.ToRect(0)}
	}
	return &treeNeighborhood{
		state:  state,
		vision: vision,
		tree:   rtreego.NewTree(2, 4, 16, objs...),
	}
}

func (t *treeNeighborhood) Visible(index int) []Robot {
	me := t.state[index]
	visionSq := t.vision * t.vision
	box := rtreego.Point{me.X, me.Y}.ToRect(queryReach(me, t.vision))

	var found []int
	for _, obj := range t.tree.SearchIntersect(box) {
		k := obj.(*indexedRobot).index
		if t.state[k].Position().DistanceSquaredTo(me.Position()) <= visionSq {
			found = append(found, k)
		}
	}
	slices.Sort(found)
	visible := make([]Robot, len(found))
	for i, k := range found {
		visible[i] = t.state[k]
	}
	return visible
}
