// Package core drives a scoreboard automatically, one cycle per tick.
// Every tick performs all pending actions of the current cycle and then
// advances to the next one.
package core

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/scoreboard/timing/scoreboard"
)

// DefaultMaxCycles bounds Run for programs that never finish.
const DefaultMaxCycles = 100000

// ErrCycleLimit is returned by Run when the program is still running after
// the cycle limit.
var ErrCycleLimit = errors.New("cycle limit reached")

// Stats holds performance statistics for a run.
type Stats struct {
	scoreboard.Stats
	// Actions is the number of stage transitions performed.
	Actions uint64
}

// Core plays every pending action of a scoreboard until the program
// completes.
type Core struct {
	// Scoreboard is the simulated machine.
	Scoreboard *scoreboard.Scoreboard

	maxCycles uint64
	logger    logr.Logger
	actions   uint64
}

// Option configures a Core.
type Option func(*Core)

// WithMaxCycles sets the cycle limit used by Run.
func WithMaxCycles(n uint64) Option {
	return func(c *Core) {
		c.maxCycles = n
	}
}

// WithLogger sets the logger for run progress.
func WithLogger(logger logr.Logger) Option {
	return func(c *Core) {
		c.logger = logger
	}
}

// NewCore creates a Core around sb.
func NewCore(sb *scoreboard.Scoreboard, opts ...Option) *Core {
	c := &Core{
		Scoreboard: sb,
		maxCycles:  DefaultMaxCycles,
		logger:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start starts the simulation if it is not running yet.
func (c *Core) Start() error {
	if c.Scoreboard.Started() {
		return nil
	}
	return c.Scoreboard.StartSimulation()
}

// Tick performs every pending action of the current cycle and advances to
// the next cycle. It returns false once the program has completed or the
// cycle limit is reached.
func (c *Core) Tick() bool {
	sb := c.Scoreboard
	if !sb.Started() || sb.Done() || sb.Cycle() >= c.maxCycles {
		return false
	}

	for _, a := range sb.PendingActions().Sorted() {
		outcome, err := sb.Perform(a)
		if err != nil || !outcome.Success {
			// Only reachable if the pending set and the validator disagree.
			c.logger.Error(err, "pending action rejected",
				"action", a.String(), "cycle", sb.Cycle(), "message", outcome.Message)
			return false
		}
		c.actions++
		c.logger.V(2).Info(outcome.Message)
	}

	if sb.Done() {
		c.logger.V(1).Info("program complete", "cycles", sb.Cycle())
		return false
	}

	if result := sb.AdvanceCycle(); !result.Success {
		c.logger.Error(nil, "cannot advance", "message", result.Message)
		return false
	}

	return true
}

// Halted returns true if no further ticks will make progress.
func (c *Core) Halted() bool {
	sb := c.Scoreboard
	return !sb.Started() || sb.Done() || sb.Cycle() >= c.maxCycles
}

// Run starts the simulation and ticks until the program completes.
func (c *Core) Run() (Stats, error) {
	if err := c.Start(); err != nil {
		return c.Stats(), fmt.Errorf("failed to start simulation: %w", err)
	}

	for c.Tick() {
	}

	if !c.Scoreboard.Done() {
		return c.Stats(), fmt.Errorf("stopped at cycle %d: %w", c.Scoreboard.Cycle(), ErrCycleLimit)
	}
	return c.Stats(), nil
}

// RunCycles executes up to the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles; i++ {
		if !c.Tick() {
			return false
		}
	}
	return !c.Halted()
}

// Stats returns performance statistics for the run.
func (c *Core) Stats() Stats {
	return Stats{
		Stats:   c.Scoreboard.Stats(),
		Actions: c.actions,
	}
}

// Reset stops the simulation, keeping the program.
func (c *Core) Reset() {
	c.Scoreboard.StopSimulation()
	c.actions = 0
}
