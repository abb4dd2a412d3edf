// Package main provides the command-line front end for the scoreboard
// simulator.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/loader"
	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/latency"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	verbose    int
	units      map[string]int
	maxCycles  uint64
	akita      bool
}

var unitFlagNames = map[string]insts.UnitKind{
	"integer":    insts.UnitInteger,
	"adder":      insts.UnitFPAdder,
	"multiplier": insts.UnitFPMultiplier,
	"divider":    insts.UnitFPDivider,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "scoreboard",
		Short:         "Cycle-by-cycle scoreboard dynamic-scheduling simulator",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a latency configuration file (JSON or YAML)")
	root.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v",
		"Verbose output (repeat for more detail)")
	root.PersistentFlags().StringToIntVar(&opts.units, "units", nil,
		"Functional units per kind, e.g. integer=2,adder=1")

	root.AddCommand(newRunCmd(opts), newStepCmd(opts), newLatenciesCmd(opts))
	return root
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func loadLatencies(opts *options) (*latency.Table, error) {
	if opts.configPath == "" {
		return latency.NewTable(), nil
	}

	config, err := latency.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}
	return latency.NewTableWithConfig(config), nil
}

// newScoreboard builds a scoreboard for prog from the shared flags.
func newScoreboard(cmd *cobra.Command, opts *options, prog *loader.Program) (*scoreboard.Scoreboard, error) {
	table, err := loadLatencies(opts)
	if err != nil {
		return nil, err
	}

	sbOpts := []scoreboard.Option{
		scoreboard.WithLatencyTable(table),
		scoreboard.WithLogger(newLogger(cmd.ErrOrStderr(), opts.verbose).WithName("scoreboard")),
	}
	for name, count := range opts.units {
		kind, ok := unitFlagNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown unit kind %q", name)
		}
		if count < 1 {
			return nil, fmt.Errorf("unit count for %s must be > 0", name)
		}
		sbOpts = append(sbOpts, scoreboard.WithUnits(kind, count))
	}

	sb := scoreboard.New(sbOpts...)
	for _, line := range prog.Lines {
		if _, err := sb.AddInstruction(line.Inst); err != nil {
			return nil, fmt.Errorf("line %d: %w", line.Number, err)
		}
	}
	return sb, nil
}

func newRunCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Run a program to completion, performing every pending action each cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loader.Load(args[0])
			if err != nil {
				return err
			}

			sb, err := newScoreboard(cmd, opts, prog)
			if err != nil {
				return err
			}

			c := core.NewCore(sb,
				core.WithMaxCycles(opts.maxCycles),
				core.WithLogger(newLogger(cmd.ErrOrStderr(), opts.verbose).WithName("core")))

			if opts.akita {
				if _, err := core.RunOnEngine(c, 1*sim.GHz); err != nil {
					return err
				}
				if !sb.Done() {
					return fmt.Errorf("stopped at cycle %d: %w", sb.Cycle(), core.ErrCycleLimit)
				}
			} else if _, err := c.Run(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snap := sb.Snapshot()
			fmt.Fprintf(out, "Program: %s\n\n", prog.Path)
			renderInstructionStatus(out, snap)
			fmt.Fprintln(out)
			renderStats(out, c.Stats())
			return nil
		},
	}

	cmd.Flags().Uint64Var(&opts.maxCycles, "max-cycles", core.DefaultMaxCycles,
		"Stop after this many cycles")
	cmd.Flags().BoolVar(&opts.akita, "akita", false,
		"Drive the simulation with an akita serial engine")
	return cmd
}

func newLatenciesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "latencies",
		Short: "Print the instruction catalog with unit kinds and latencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadLatencies(opts)
			if err != nil {
				return err
			}
			renderCatalog(cmd.OutOrStdout(), table)
			return nil
		},
	}
}
