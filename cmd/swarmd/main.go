package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-swarm-convergence/internal/server"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/internal/worker"
	"github.com/lao-tseu-is-alive/go-swarm-convergence/pkg/swarm"
)

type globalFlags struct {
	configFile string
	debug      bool
}

func main() {
	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:          "swarmd",
		Short:        "Look-compute-move robot swarm simulator (line and plane)",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "configuration file (.toml or .json)")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "log every generation")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(runCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(flags *globalFlags) *cobra.Command {
	var listen, staticDir, index string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve calculators over websocket (/ws) for a visualisation client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticDir = staticDir
			}
			if cmd.Flags().Changed("index") {
				cfg.Index = index
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, newLogger(flags.debug))
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory of the visualisation client served at /")
	cmd.Flags().StringVar(&index, "index", "grid", "2D neighbourhood index: grid, rtree or scan")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "enclosing disc shuffle seed (0 is random)")
	return cmd
}

func runServe(cfg *swarm.Config, logger golog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := worker.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}

	system, err := newActorSystem(ctx, logger)
	if err != nil {
		return err
	}
	defer system.Stop(context.Background())

	srv := server.New(system, opts, cfg.StaticDir, logger, os.Stdout)
	return srv.ListenAndServe(ctx, cfg.Listen)
}

func loadConfig(flags *globalFlags) (*swarm.Config, error) {
	if flags.configFile == "" {
		return swarm.DefaultConfig(), nil
	}
	return swarm.LoadConfig(flags.configFile)
}

func newLogger(debug bool) golog.Logger {
	if debug {
		return golog.New(golog.DebugLevel, os.Stderr)
	}
	return golog.New(golog.InfoLevel, os.Stderr)
}

func newActorSystem(ctx context.Context, logger golog.Logger) (actor.ActorSystem, error) {
	system, err := actor.NewActorSystem("SwarmConvergence",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return nil, err
	}
	if err := system.Start(ctx); err != nil {
		return nil, err
	}
	return system, nil
}
