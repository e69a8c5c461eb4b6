package benchmarks

import (
	"fmt"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/zeu5/gfn-substrate/grid"
	"github.com/zeu5/gfn-substrate/types"
)

// GridCheck enumerates the hypergrid twice, as a full grid and flattened, and
// fails when the two layouts disagree on the reward mass, the states or the
// state indices
func GridCheck(cmd *cobra.Command, heatmap string) error {
	logger := newLogger(cmd.ErrOrStderr())
	env, err := newHyperGrid()
	if err != nil {
		return err
	}
	logger.Debug("built environment", "env", env.String(), "n_states", env.NStates())

	report, err := types.CheckGrid(env)
	if err != nil {
		return fmt.Errorf("checking %s: %w", env, err)
	}
	logger.Info("grid check passed",
		"env", env.String(),
		"grid_shape", report.GridShape.String(),
		"n_states", report.NStates,
		"z_grid", report.GridSum,
		"z_flat", report.FlatSum,
	)
	fmt.Fprintln(cmd.OutOrStdout(), report)

	if heatmap == "" {
		return nil
	}
	rewards, err := grid.NewRewardGrid(env)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(saveFile, os.ModePerm); err != nil {
		return err
	}
	heatmapPath := path.Join(saveFile, heatmap)
	if err := rewards.SaveHeatmap(env.String(), heatmapPath); err != nil {
		return fmt.Errorf("saving heatmap: %w", err)
	}
	logger.Info("saved reward heatmap", "path", heatmapPath)
	return nil
}

func GridCommand() *cobra.Command {
	var heatmap string

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Check the enumeration of the hypergrid state space",
		RunE: func(cmd *cobra.Command, args []string) error {
			return GridCheck(cmd, heatmap)
		},
	}
	cmd.PersistentFlags().StringVar(&heatmap, "heatmap", "", "Render the rewards of a 2 dimensional grid to this image file inside the save folder")
	return cmd
}
