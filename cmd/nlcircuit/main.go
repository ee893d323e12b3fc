// Command nlcircuit is a small demo CLI: it reads a netlist, builds the
// model, runs the steady-state bootstrap, then steps it for a fixed
// number of samples with every input pin held at zero, printing the
// dynamic node voltages after each sample.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/nlcircuit/core/pkg/netlist"
)

func main() {
	netlistPath := flag.String("netlist", "", "path to a netlist file")
	dt := flag.Float64("dt", 1.0/48000.0, "sample period in seconds")
	samples := flag.Int("samples", 10, "number of samples to step")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if *netlistPath == "" {
		logger.Fatal().Msg("missing -netlist")
	}

	src, err := os.ReadFile(*netlistPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("reading netlist")
	}

	nl, err := netlist.Parse(string(src))
	if err != nil {
		logger.Fatal().Err(err).Msg("parsing netlist")
	}

	m, idx, err := netlist.Build(nl, *dt)
	if err != nil {
		logger.Fatal().Err(err).Msg("building model")
	}
	m.SetLogger(logger)

	if err := m.Setup(); err != nil {
		logger.Fatal().Err(err).Msg("setup")
	}

	names := idx.DynamicNames()
	input := make([]float64, m.InputSize())

	for sample := 0; sample < *samples; sample++ {
		dynamic, err := m.Step(input)
		if err != nil {
			logger.Fatal().Err(err).Msg("step")
		}
		printSample(sample, names, dynamic)
	}
}

func printSample(sample int, names []string, dynamic []float64) {
	fmt.Printf("sample %d:\n", sample)
	for i, v := range dynamic {
		name := fmt.Sprintf("D%d", i)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		fmt.Printf("  V(%s) = %g\n", name, v)
	}
}
