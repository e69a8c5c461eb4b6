package benchmarks

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"runtime"
	"runtime/pprof"
)

// startProfiling starts the profiles requested on the command line. The
// returned function stops them and writes the memory profile.
func startProfiling(logger *slog.Logger) (func() error, error) {
	if cpuprofile == "" && memprofile == "" {
		return func() error { return nil }, nil
	}
	if err := os.MkdirAll(saveFile, os.ModePerm); err != nil {
		return nil, err
	}

	var cpuFile *os.File
	if cpuprofile != "" {
		cpuProfPath := path.Join(saveFile, cpuprofile)
		logger.Info("profiling CPU", "path", cpuProfPath)
		f, err := os.Create(cpuProfPath)
		if err != nil {
			return nil, fmt.Errorf("could not create CPU profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, fmt.Errorf("could not start CPU profile: %w", err)
		}
		cpuFile = f
	}

	return func() error {
		if cpuFile != nil {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}
		if memprofile == "" {
			return nil
		}
		memProfPath := path.Join(saveFile, memprofile)
		logger.Info("profiling memory", "path", memProfPath)
		f, err := os.Create(memProfPath)
		if err != nil {
			return fmt.Errorf("could not create memory profile: %w", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("could not write memory profile: %w", err)
		}
		return nil
	}, nil
}
