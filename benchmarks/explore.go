package benchmarks

import (
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeu5/gfn-substrate/grid"
	"github.com/zeu5/gfn-substrate/policies"
	"github.com/zeu5/gfn-substrate/types"
	"github.com/zeu5/gfn-substrate/util"
	"golang.org/x/exp/rand"
)

type exploreConfig struct {
	Trajectories   int
	Batches        int
	ExitPreference float64
	BackwardBatch  []int
	MaxAttempts    int
}

// Explore samples forward trajectories from s0, then walks a batch of random
// states back to s0 with random actions, treating illegal actions as expected
func Explore(cmd *cobra.Command, config exploreConfig) (err error) {
	logger := newLogger(cmd.ErrOrStderr())
	stopProfiling, err := startProfiling(logger)
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := stopProfiling(); err == nil {
			err = stopErr
		}
	}()

	env, err := newHyperGrid()
	if err != nil {
		return err
	}
	runSeed := seed
	if runSeed == 0 {
		runSeed = uint64(time.Now().UnixNano())
	}
	logger.Debug("exploring", "env", env.String(), "seed", runSeed)

	var policy types.Policy = types.NewRandomPolicy(runSeed)
	if config.ExitPreference != 0 {
		policy, err = policies.NewExitBiasedPolicy(env.NActions(), config.ExitPreference, runSeed)
		if err != nil {
			return err
		}
	}
	sampler, err := types.NewSampler(&types.SamplerConfig{
		Env:    env,
		Policy: policy,
	})
	if err != nil {
		return err
	}

	coverage := types.NewCoverage()
	graph := types.NewVisitGraph()
	var forward *types.Trajectories
	for b := 0; b < config.Batches; b++ {
		forward, err = sampler.SampleForward(config.Trajectories)
		if err != nil {
			return fmt.Errorf("sampling forward trajectories: %w", err)
		}
		coverage.Add(forward)
		graph.AddTrajectories(forward)
		logger.Debug("sampled forward trajectories", "batch", b, "n", forward.NTrajectories(), "max_length", forward.MaxLength(), "covered", coverage.Unique())
	}
	if forward == nil {
		return &types.ConfigurationError{Reason: fmt.Sprintf("at least one batch is needed, got %d", config.Batches)}
	}
	logger.Info("sampled forward trajectories", "batches", config.Batches, "covered", coverage.Unique(), "n_states", env.NStates())
	fmt.Fprintln(cmd.OutOrStdout(), forward)

	states, err := env.RandomStates(types.Shape(config.BackwardBatch), rand.NewSource(runSeed))
	if err != nil {
		return err
	}
	start := states.Clone()
	walked, rejected, err := randomBackwardWalk(env, states, config.MaxAttempts, runSeed, logger)
	if err != nil {
		return err
	}
	logger.Info("walked back to s0", "batch_shape", walked.BatchShape().String(), "rejected_steps", rejected)

	backward, err := sampler.SampleBackward(start)
	if err != nil {
		return fmt.Errorf("sampling backward trajectories: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), backward)
	graph.AddTrajectories(backward)

	savePath, err := util.WriteToFile(saveFile, "trajectories.txt",
		env.String(),
		"forward:",
		forward.Render(),
		"backward:",
		backward.Render(),
	)
	if err != nil {
		return err
	}
	logger.Info("saved trajectories", "path", savePath)

	graphPath := path.Join(saveFile, "visit_graph.json")
	if err := graph.Record(graphPath); err != nil {
		return fmt.Errorf("recording visit graph: %w", err)
	}
	coveragePath := path.Join(saveFile, "coverage.png")
	if err := coverage.Plot(env.String(), coveragePath); err != nil {
		return fmt.Errorf("plotting coverage: %w", err)
	}
	logger.Info("saved analysis", "visit_graph", graphPath, "coverage", coveragePath, "nodes", len(graph.Nodes))
	return nil
}

// randomBackwardWalk steps every element with a random move until all are at
// s0. Elements at s0 take the no-op. Illegal moves are rejected by the
// environment as a whole batch and retried with fresh actions.
func randomBackwardWalk(env *grid.HyperGrid, states *types.States, maxAttempts int, seed uint64, logger *slog.Logger) (*types.States, int, error) {
	r := rand.New(rand.NewSource(seed + 1))
	moves := env.NActions() - 1
	rejected := 0
	for attempt := 0; !types.AllTrue(states.IsInitialState()); attempt++ {
		if attempt >= maxAttempts {
			return nil, rejected, fmt.Errorf("states not back at s0 after %d attempts", maxAttempts)
		}
		initial := states.IsInitialState().Data()
		actions := make([]int64, len(initial))
		for i := range actions {
			actions[i] = types.ExitAction(env)
			if !initial[i] {
				actions[i] = int64(r.Intn(moves))
			}
		}
		actionsTensor, err := types.NewTensor(states.BatchShape(), actions)
		if err != nil {
			return nil, rejected, err
		}
		next, err := env.BackwardStep(states, actionsTensor)
		var invalid *types.NonValidActionsError
		if errors.As(err, &invalid) {
			rejected++
			logger.Debug("rejected backward actions", "positions", fmt.Sprint(invalid.Positions))
			continue
		}
		if err != nil {
			return nil, rejected, err
		}
		states = next
	}
	return states, rejected, nil
}

func ExploreCommand() *cobra.Command {
	config := exploreConfig{}

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Sample forward and backward trajectories in the hypergrid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Explore(cmd, config)
		},
	}
	cmd.PersistentFlags().IntVarP(&config.Trajectories, "trajectories", "n", 4, "Number of forward trajectories")
	cmd.PersistentFlags().IntVar(&config.Batches, "batches", 1, "Number of forward batches sampled for the coverage analysis")
	cmd.PersistentFlags().Float64Var(&config.ExitPreference, "exit-preference", 0, "Softmax preference of the exit action, 0 samples uniformly")
	cmd.PersistentFlags().IntSliceVar(&config.BackwardBatch, "backward-batch", []int{2, 3}, "Batch shape of the random states walked back to s0")
	cmd.PersistentFlags().IntVar(&config.MaxAttempts, "max-attempts", 100000, "Bound on the backward steps attempted")
	return cmd
}
