package swarm

// Policy selects how a robot on the line computes its next position.
type Policy int32

const (
	// PolicyExtremes moves a robot to the middle of its leftmost and rightmost
	// visible robots (itself when a side is empty).
	PolicyExtremes Policy = iota
	// PolicyAllVisible moves a robot to the mean of itself and every visible robot.
	PolicyAllVisible
)

// PolicyAllValue is the control message value selecting PolicyAllVisible.
const PolicyAllValue = "all"

// ParsePolicy maps a control message value to a Policy: "all" selects
// PolicyAllVisible, anything else PolicyExtremes.
func ParsePolicy(value string) Policy {
	if value == PolicyAllValue {
		return PolicyAllVisible
	}
	return PolicyExtremes
}

func (p Policy) String() string {
	if p == PolicyAllVisible {
		return "all-visible"
	}
	return "extremes"
}

// Palette holds the chain colours in the order they are handed out.
var Palette = []string{
	"blue", "lime", "crimson", "brown", "turquoise", "indigo", "olive",
	"teal", "cyan", "cornflowerblue", "pink", "orange", "silver", "black",
}

// StepLine computes the generation following prev on the line.
// Every target is computed from prev only; the result is sorted on X and coloured.
func StepLine(prev []Robot, vision float64, policy Policy) []Robot {
	state := cloneRobots(prev)
	SortByX(state)

	next := make([]float64, len(state))
	for i, r := range state {
		if r.Faulty {
			next[i] = r.X
			continue
		}
		lefts, rights := VisibleOnLine(state, i, vision)
		next[i] = target(r, lefts, rights, policy)
	}

	for i := range state {
		state[i].X = next[i]
	}
	SortByX(state)
	ClassifyChains(state, vision)
	return state
}

func target(me Robot, lefts, rights []Robot, policy Policy) float64 {
	if policy == PolicyAllVisible {
		sum := me.X
		for _, r := range lefts {
			sum += r.X
		}
		for _, r := range rights {
			sum += r.X
		}
		return sum / float64(len(lefts)+len(rights)+1)
	}
	leftMost, rightMost := extremes(me, lefts, rights)
	return (leftMost.X + rightMost.X) / 2
}

// extremes returns the leftmost and rightmost visible robots, each defaulting to me.
func extremes(me Robot, lefts, rights []Robot) (leftMost, rightMost Robot) {
	leftMost, rightMost = me, me
	if len(lefts) > 0 {
		leftMost = lefts[0]
	}
	if len(rights) > 0 {
		rightMost = rights[len(rights)-1]
	}
	return leftMost, rightMost
}

// ClassifyChains colours sorted in place, left to right. A robot shares the
// colour of its leftmost visible robot when that robot sees it as its own
// rightmost (a mutual chain); otherwise it takes the next palette colour.
// The palette cycles once its colours are used up.
func ClassifyChains(sorted []Robot, vision float64) {
	// rightmost label => labels of the robots it is the rightmost of
	rightMostOf := make(map[string]map[string]struct{}, len(sorted))
	nextColour := 0

	for i := range sorted {
		me := sorted[i]
		lefts, rights := VisibleOnLine(sorted, i, vision)
		leftMost, rightMost := extremes(me, lefts, rights)

		if _, mutual := rightMostOf[me.Label][leftMost.Label]; mutual {
			sorted[i].Colour = leftMost.Colour
		} else {
			sorted[i].Colour = Palette[nextColour%len(Palette)]
			nextColour++
		}

		set, ok := rightMostOf[rightMost.Label]
		if !ok {
			set = make(map[string]struct{})
			rightMostOf[rightMost.Label] = set
		}
		set[me.Label] = struct{}{}
	}
}
