package swarm

// duplicateDistanceSq is the squared distance under which two robots are
// considered to share a position (1e-10 apart).
const duplicateDistanceSq = 1e-20

// VisibleOnLine returns the robots the robot at index can see on the line.
// state must be sorted ascending on X. lefts are in increasing X order, so
// lefts[0] is the leftmost visible robot; rights[len(rights)-1] is the rightmost.
// The robot itself is in neither list.
func VisibleOnLine(state []Robot, index int, vision float64) (lefts, rights []Robot) {
	me := state[index]

	for i := 0; i < index; i++ {
		if me.X-state[i].X <= vision {
			lefts = append(lefts, state[i])
		}
	}

	for i := index + 1; i < len(state); i++ {
		// sorted: everything further right is out of range too
		if state[i].X-me.X > vision {
			break
		}
		rights = append(rights, state[i])
	}
	return lefts, rights
}

// VisibleOnPlane returns every robot within vision of me, me included, in input order.
func VisibleOnPlane(state []Robot, me Robot, vision float64) []Robot {
	visionSq := vision * vision
	var visible []Robot
	for _, r := range state {
		if r.Position().DistanceSquaredTo(me.Position()) <= visionSq {
			visible = append(visible, r)
		}
	}
	return visible
}

// UniquePositions drops robots sitting on the position of a robot already kept,
// keeping the first one met in input order.
func UniquePositions(robots []Robot) []Robot {
	unique := make([]Robot, 0, len(robots))
	for _, r := range robots {
		duplicate := false
		for _, kept := range unique {
			if r.Position().DistanceSquaredTo(kept.Position()) <= duplicateDistanceSq {
				duplicate = true
				break
			}
		}
		if !duplicate {
			unique = append(unique, r)
		}
	}
	return unique
}
