package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/internal/worker"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/protocol"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

// Scenario is an initial swarm saved by the visualisation client. Zero values
// fall back to the configuration.
type Scenario struct {
	Range        float64       `json:"range"`
	Dimension    int           `json:"dimension"`
	Mode         string        `json:"mode"`
	NextPosition string        `json:"nextPosition"`
	Generations  int           `json:"generations"`
	State        []swarm.Robot `json:"state"`
}

func loadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario: %w", err)
	}
	var sc Scenario
	if err := json.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("failed to decode scenario %s: %w", path, err)
	}
	return &sc, nil
}

func runCmd(flags *globalFlags) *cobra.Command {
	var generations, batch int

	cmd := &cobra.Command{
		Use:   "run [scenario.json]",
		Short: "Compute generations of a scenario and print them as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("batch") {
				cfg.BatchSize = batch
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			sc, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("generations") {
				sc.Generations = generations
			}
			var logger golog.Logger = golog.DiscardLogger
			if flags.debug {
				logger = newLogger(true)
			}
			return runScenario(cmd.Context(), cfg, sc, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().IntVarP(&generations, "generations", "n", 10, "number of generations to compute")
	cmd.Flags().IntVar(&batch, "batch", 10, "generations requested per batch")
	return cmd
}

// runScenario drives a calculator the way the visualisation client does and
// writes one generate response per line to out.
func runScenario(ctx context.Context, cfg *swarm.Config, sc *Scenario, out io.Writer, logger golog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if sc.Range == 0 {
		sc.Range = cfg.VisionRange
	}
	if sc.Dimension == 0 {
		sc.Dimension = cfg.Dimension
	}
	if sc.Mode == "" {
		sc.Mode = cfg.Mode
	}
	if sc.NextPosition == "" {
		sc.NextPosition = cfg.NextPosition
	}
	if sc.Generations == 0 {
		sc.Generations = cfg.BatchSize
	}

	opts, err := worker.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	// the scenario overrides the configured 1D policy and 2D mode
	opts.Policy = swarm.ParsePolicy(sc.NextPosition)
	if opts.Mode, err = swarm.ParseMode(sc.Mode); err != nil {
		return err
	}

	system, err := newActorSystem(ctx, logger)
	if err != nil {
		return err
	}
	defer system.Stop(context.Background())

	session, err := worker.NewSession(ctx, system, opts)
	if err != nil {
		return err
	}
	defer session.Close(context.Background())

	driver := &worker.Driver{
		Session:   session,
		BatchSize: cfg.BatchSize,
		Range:     sc.Range,
		Dimension: swarm.Dimension(sc.Dimension),
		Mode:      opts.Mode,
	}
	enc := json.NewEncoder(out)
	_, err = driver.Run(ctx, sc.State, sc.Generations, func(g swarm.Generation) error {
		return enc.Encode(protocol.NewGenerateResponse(g))
	})
	return err
}
