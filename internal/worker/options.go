package worker

import (
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

// Options tune what a Calculator does with a request.
type Options struct {
	Index swarm.IndexKind
	// Seed feeds the enclosing disc shuffle; 0 picks a random seed.
	Seed uint64
	// Policy is the 1D policy in effect until a control message changes it.
	Policy swarm.Policy
	// Mode applies to 2D requests that do not name one.
	Mode swarm.Mode
}

// OptionsFromConfig picks the calculator settings out of cfg.
func OptionsFromConfig(cfg *swarm.Config) (Options, error) {
	index, err := swarm.ParseIndexKind(cfg.Index)
	if err != nil {
		return Options{}, err
	}
	mode, err := swarm.ParseMode(cfg.Mode)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Index:  index,
		Seed:   cfg.Seed,
		Policy: swarm.ParsePolicy(cfg.NextPosition),
		Mode:   mode,
	}, nil
}
