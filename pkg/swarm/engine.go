package swarm

import (
	"context"
	"fmt"
	"math/rand/v2"

	golog "github.com/tochemey/goakt/v3/log"
)

// Engine produces successive generations of a swarm.
// The zero value is not usable: Range and Dimension must be set.
type Engine struct {
	Range     float64
	Dimension Dimension

	// Policy is the 1D policy used when PolicySource is nil.
	Policy Policy
	// PolicySource, when set, is read before every 1D generation so that a
	// policy change received mid batch applies from the next generation on.
	PolicySource func() Policy

	// Mode and Index only apply to the plane.
	Mode  Mode
	Index IndexKind

	// Rand drives the enclosing disc shuffle; nil uses the package source.
	Rand *rand.Rand

	Logger golog.Logger
}

// Emit receives each generation as soon as it is computed. Returning an error
// stops the batch.
type Emit func(Generation) error

// Generate computes todo generations starting from state, numbering the first
// one iter, and hands each of them to emit in order. todo == 0 is a no-op.
// Each generation is derived only from the previous one; state is not modified.
func (e *Engine) Generate(ctx context.Context, iter, todo int, state []Robot, emit Emit) error {
	if iter < 1 {
		return fmt.Errorf("%w: iter must be >= 1, got %d", ErrInvalidState, iter)
	}
	if todo < 0 {
		return fmt.Errorf("%w: todo must be >= 0, got %d", ErrInvalidState, todo)
	}
	if todo == 0 {
		return nil
	}
	if err := ValidateRange(e.Range); err != nil {
		return err
	}
	if err := ValidateState(state); err != nil {
		return err
	}

	log := e.logger()
	current := state
	for n := 0; n < todo; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := e.Step(current)
		if err != nil {
			return fmt.Errorf("generation %d: %w", iter+n, err)
		}
		log.Debugf("generation %d computed (%s, %d robots)", iter+n, e.Dimension, len(next))
		if err := emit(Generation{Iter: iter + n, Robots: next}); err != nil {
			return err
		}
		current = next
	}
	return nil
}

// Step computes the generation following state.
func (e *Engine) Step(state []Robot) ([]Robot, error) {
	switch e.Dimension {
	case Line:
		return StepLine(state, e.Range, e.policy()), nil
	case Plane:
		mode := e.Mode
		if mode == "" {
			mode = ModeConnectivity
		}
		return StepPlane(state, e.Range, mode, e.Index, e.Rand)
	default:
		return nil, fmt.Errorf("%w: unsupported dimension %s", ErrInvalidState, e.Dimension)
	}
}

func (e *Engine) policy() Policy {
	if e.PolicySource != nil {
		return e.PolicySource()
	}
	return e.Policy
}

func (e *Engine) logger() golog.Logger {
	if e.Logger == nil {
		return golog.DiscardLogger
	}
	return e.Logger
}
