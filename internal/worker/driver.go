package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

// ErrCalculator wraps the error messages a calculator answers with.
var ErrCalculator = errors.New("calculator error")

// History caches every generation received, generation 0 being the initial state.
type History struct {
	mu   sync.RWMutex
	gens []swarm.Generation
}

func NewHistory(initial []swarm.Robot) *History {
	return &History{gens: []swarm.Generation{{Iter: 0, Robots: initial}}}
}

// Add records g. Generations must arrive in order.
func (h *History) Add(g swarm.Generation) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if want := len(h.gens); g.Iter != want {
		return fmt.Errorf("out of order generation: got %d, want %d", g.Iter, want)
	}
	h.gens = append(h.gens, g)
	return nil
}

// Get returns generation iter if it was received.
func (h *History) Get(iter int) (swarm.Generation, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if iter < 0 || iter >= len(h.gens) {
		return swarm.Generation{}, false
	}
	return h.gens[iter], true
}

// Latest returns the last generation received.
func (h *History) Latest() swarm.Generation {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.gens[len(h.gens)-1]
}

// Len counts the generations held, the initial one included.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.gens)
}

// Driver plays the part of the visualisation controller: it asks a calculator
// for generations batch by batch and requests the next batch as soon as the
// last generation of the current one arrives.
type Driver struct {
	Session   *Session
	BatchSize int
	Range     float64
	Dimension swarm.Dimension
	Mode      swarm.Mode
}

// Run computes generations 1..total from initial. visit, when not nil, sees every
// generation as it arrives. The returned History holds all of them.
func (d *Driver) Run(ctx context.Context, initial []swarm.Robot, total int, visit func(swarm.Generation) error) (*History, error) {
	if d.BatchSize < 1 {
		return nil, fmt.Errorf("batch size must be >= 1, got %d", d.BatchSize)
	}
	history := NewHistory(initial)
	if total <= 0 {
		return history, nil
	}

	if err := d.request(ctx, 1, total, initial); err != nil {
		return history, err
	}
	for {
		m, err := d.Session.Next(ctx)
		if err != nil {
			return history, err
		}
		switch m := m.(type) {
		case *protocol.ErrorMessage:
			return history, fmt.Errorf("%w: %s", ErrCalculator, m.Error)
		case *protocol.GenerateResponse:
			g := m.Response
			if err := history.Add(g); err != nil {
				return history, err
			}
			if visit != nil {
				if err := visit(g); err != nil {
					return history, err
				}
			}
			if g.Iter >= total {
				return history, nil
			}
			if g.Iter%d.BatchSize == 0 {
				if err := d.request(ctx, g.Iter+1, total, g.Robots); err != nil {
					return history, err
				}
			}
		}
	}
}

func (d *Driver) request(ctx context.Context, iter, total int, state []swarm.Robot) error {
	todo := min(d.BatchSize, total-iter+1)
	req := protocol.NewGenerateRequest(iter, todo, state, d.Range)
	if d.Dimension == swarm.Plane {
		req.Dimension = int(swarm.Plane)
		req.Mode = string(d.Mode)
	}
	return d.Session.Send(ctx, req)
}
