package main

import (
	"fmt"
	"os"

	"github.com/zeu5/gfn-substrate/benchmarks"
)

// main entry point to the validation harness
func main() {
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
