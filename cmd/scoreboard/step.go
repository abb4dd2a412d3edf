package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sarchlab/scoreboard/loader"
	"github.com/sarchlab/scoreboard/timing/core"
	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

const stepHelp = `Commands:
  issue N | read N | exec N | write N   perform a stage for instruction N
  next                                  advance to the next cycle
  auto                                  perform all pending actions and advance
  state                                 list the possible actions
  hint                                  suggest the next step
  show                                  print the scoreboard tables
  quit                                  leave
`

func newStepCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "step <program>",
		Short: "Step through a program interactively, one action at a time",
		Long: "Step through a program interactively. When standard input is not a\n" +
			"terminal the commands are read from it as a script.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			sb, err := newScoreboard(cmd, opts, prog)
			if err != nil {
				return err
			}
			if err := sb.StartSimulation(); err != nil {
				return err
			}

			in := cmd.InOrStdin()
			s := &stepper{
				sb:          sb,
				feedback:    scoreboard.NewFeedback(sb),
				core:        core.NewCore(sb),
				out:         cmd.OutOrStdout(),
				interactive: isTerminal(in),
			}
			return s.loop(in)
		},
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type stepper struct {
	sb          *scoreboard.Scoreboard
	feedback    *scoreboard.Feedback
	core        *core.Core
	out         io.Writer
	interactive bool
	announced   bool
}

func (s *stepper) loop(in io.Reader) error {
	fmt.Fprintln(s.out, "Simulation started. Now perform actions for each cycle.")
	if s.interactive {
		fmt.Fprint(s.out, stepHelp)
	}

	scanner := bufio.NewScanner(in)
	for {
		if s.interactive {
			fmt.Fprintf(s.out, "cycle %d> ", s.sb.Cycle())
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !s.interactive {
			fmt.Fprintf(s.out, "> %s\n", line)
		}
		if !s.execute(line) {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}

	fmt.Fprintln(s.out)
	renderState(s.out, s.sb.Snapshot())
	return nil
}

// execute runs one command and reports whether to keep reading.
func (s *stepper) execute(line string) bool {
	fields := strings.Fields(strings.ToLower(line))

	switch fields[0] {
	case "quit", "exit", "q":
		return false
	case "help", "?":
		fmt.Fprint(s.out, stepHelp)
	case "next", "n", "advance":
		fmt.Fprintln(s.out, s.sb.AdvanceCycle().Message)
	case "auto":
		cycle := s.sb.Cycle()
		s.core.Tick()
		fmt.Fprintf(s.out, "Performed all actions of cycle %d.\n", cycle)
	case "state":
		fmt.Fprintln(s.out, s.feedback.CurrentState())
	case "hint":
		fmt.Fprintln(s.out, s.feedback.Hint())
	case "show":
		renderState(s.out, s.sb.Snapshot())
	default:
		s.perform(fields)
	}

	if s.sb.Done() && !s.announced {
		s.announced = true
		fmt.Fprintln(s.out, "All instructions have written their results.")
	}
	return true
}

func (s *stepper) perform(fields []string) {
	stage, ok := scoreboard.ParseStage(fields[0])
	if !ok {
		fmt.Fprintf(s.out, "Unknown command %q. Type help for a list.\n", fields[0])
		return
	}
	if len(fields) != 2 {
		fmt.Fprintf(s.out, "Usage: %s N\n", stage.Token())
		return
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Fprintf(s.out, "Bad instruction number %q.\n", fields[1])
		return
	}

	outcome, err := s.sb.Perform(scoreboard.Action{Stage: stage, Index: n - 1})
	if err != nil {
		fmt.Fprintf(s.out, "No instruction %d.\n", n)
		return
	}
	fmt.Fprintln(s.out, outcome.Message)
}
