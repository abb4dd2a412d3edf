package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Component lets an akita engine drive a Core. Each engine tick runs one
// scoreboard cycle; the component stops ticking once the program is done.
type Component struct {
	*sim.TickingComponent

	core *Core
}

// NewComponent wraps core in a ticking component running at freq.
func NewComponent(name string, engine sim.Engine, freq sim.Freq, core *Core) *Component {
	c := &Component{core: core}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)
	return c
}

// Tick runs one scoreboard cycle.
func (c *Component) Tick() bool {
	return c.core.Tick()
}

// Core returns the wrapped core.
func (c *Component) Core() *Core {
	return c.core
}

// RunOnEngine runs core to completion on a fresh serial akita engine and
// returns the simulated time at which it finished.
func RunOnEngine(core *Core, freq sim.Freq) (sim.VTimeInSec, error) {
	if err := core.Start(); err != nil {
		return 0, err
	}

	engine := sim.NewSerialEngine()
	comp := NewComponent("Scoreboard", engine, freq, core)
	comp.TickLater()

	if err := engine.Run(); err != nil {
		return engine.CurrentTime(), err
	}
	return engine.CurrentTime(), nil
}
