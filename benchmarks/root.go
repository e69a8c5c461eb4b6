package benchmarks

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/zeu5/gfn-substrate/grid"
)

var (
	ndim       int
	height     int
	seed       uint64
	saveFile   string
	verbose    bool
	cpuprofile string
	memprofile string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "gfn",
		Short:         "Validation harness for the GFlowNet environment substrate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().IntVar(&ndim, "ndim", 2, "Number of dimensions of the hypergrid")
	rootCommand.PersistentFlags().IntVar(&height, "height", 8, "Side length of the hypergrid")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed, 0 uses the current time")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder")
	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	rootCommand.PersistentFlags().StringVar(&cpuprofile, "cpuprofile", "", "Write a CPU profile to this file inside the save folder")
	rootCommand.PersistentFlags().StringVar(&memprofile, "memprofile", "", "Write a memory profile to this file inside the save folder")
	// adding the subcommands here
	rootCommand.AddCommand(GridCommand())
	rootCommand.AddCommand(ExploreCommand())
	return rootCommand
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newHyperGrid() (*grid.HyperGrid, error) {
	config := grid.DefaultConfig()
	config.NDim = ndim
	config.Height = height
	return grid.NewHyperGrid(config)
}
