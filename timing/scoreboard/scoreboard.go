// Package scoreboard implements the classic scoreboard dynamic-scheduling
// algorithm one cycle at a time.
//
// Instructions flow through four ordered stages: Issue, Read Operands,
// Execution Complete and Write Result. A bank of functional units and the
// register result table enforce structural, RAW, WAW and WAR hazards.
//
// Every cycle the engine computes the set of pending actions, the stage
// transitions that must happen before the next cycle. A caller performs
// those actions with Issue, ReadOperands, CompleteExecution and WriteResult
// and then calls AdvanceCycle. An action is accepted only when both the
// Validator and the pending-action set allow it.
package scoreboard

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/sarchlab/scoreboard/insts"
	"github.com/sarchlab/scoreboard/timing/latency"
)

// Stage is one of the four scoreboard pipeline stages.
type Stage int

// Scoreboard stages, in pipeline order.
const (
	StageIssue Stage = iota
	StageReadOperands
	StageExecutionComplete
	StageWriteResult
	numStages
)

var stageNames = [numStages]string{
	"Issue", "Read Operands", "Execution Complete", "Write Result",
}

var stageTokens = [numStages]string{"issue", "read", "exec", "write"}

// Stages returns the four stages in pipeline order.
func Stages() []Stage {
	return []Stage{StageIssue, StageReadOperands, StageExecutionComplete, StageWriteResult}
}

func (s Stage) String() string {
	if s < 0 || s >= numStages {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Token returns the short name used in action keys, e.g. "read".
func (s Stage) Token() string {
	if s < 0 || s >= numStages {
		return "unknown"
	}
	return stageTokens[s]
}

// ParseStage accepts either a stage token ("issue") or its full name.
func ParseStage(name string) (Stage, bool) {
	for _, s := range Stages() {
		if name == s.Token() || name == s.String() {
			return s, true
		}
	}
	return 0, false
}

// Status records the cycle in which an instruction reached each stage.
// Cycles start at 1; zero means the stage has not been reached.
type Status [numStages]uint64

// Reached reports whether the stage has been stamped.
func (s Status) Reached(stage Stage) bool {
	return s[stage] != 0
}

// Cycle returns the cycle the stage was reached in, or 0.
func (s Status) Cycle(stage Stage) uint64 {
	return s[stage]
}

// Instruction is a program entry together with its stage status. Only
// Status changes once the simulation has started.
type Instruction struct {
	insts.Instruction
	Status Status
}

// Stats holds simple progress counters for a run.
type Stats struct {
	// Cycles is the current cycle number.
	Cycles uint64
	// Issued is the number of instructions issued.
	Issued uint64
	// Completed is the number of instructions that have written results.
	Completed uint64
	// StructuralStalls counts cycles the next instruction could not issue
	// for lack of a free unit.
	StructuralStalls uint64
	// WAWStalls counts cycles the next instruction could not issue because
	// its destination was claimed.
	WAWStalls uint64
	// RAWStalls counts instruction-cycles spent waiting for operands.
	RAWStalls uint64
	// WARStalls counts instruction-cycles a result write was held back.
	WARStalls uint64
}

// Scoreboard is the aggregate simulation state.
type Scoreboard struct {
	cycle        uint64
	instructions []Instruction
	units        []FunctionalUnit
	registers    RegisterStatus
	started      bool
	pending      ActionSet

	latencies  *latency.Table
	unitCounts map[insts.UnitKind]int
	validator  *Validator
	logger     logr.Logger
	stats      Stats
}

// Option configures a Scoreboard.
type Option func(*Scoreboard)

// WithLatencyTable sets the execution latencies used at issue time.
func WithLatencyTable(table *latency.Table) Option {
	return func(s *Scoreboard) {
		s.latencies = table
	}
}

// WithUnits sets how many functional units of a kind the bank holds.
func WithUnits(kind insts.UnitKind, count int) Option {
	return func(s *Scoreboard) {
		s.unitCounts[kind] = count
	}
}

// WithLogger sets the logger that traces stage transitions at V(1).
func WithLogger(logger logr.Logger) Option {
	return func(s *Scoreboard) {
		s.logger = logger
	}
}

// New creates an empty scoreboard with one functional unit of each kind.
func New(opts ...Option) *Scoreboard {
	s := &Scoreboard{
		latencies: latency.NewTable(),
		unitCounts: map[insts.UnitKind]int{
			insts.UnitInteger:      1,
			insts.UnitFPAdder:      1,
			insts.UnitFPMultiplier: 1,
			insts.UnitFPDivider:    1,
		},
		logger: logr.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.validator = NewValidator(s)
	s.resetMachine()

	return s
}

// resetMachine clears all per-run state but keeps the instruction list.
func (s *Scoreboard) resetMachine() {
	s.cycle = 0
	s.started = false
	s.pending = ActionSet{}
	s.units = unitBank(s.unitCounts)
	s.registers = newRegisterStatus()
	s.stats = Stats{}
	for i := range s.instructions {
		s.instructions[i].Status = Status{}
	}
}

// Validator returns the validator bound to this scoreboard.
func (s *Scoreboard) Validator() *Validator {
	return s.validator
}

// Cycle returns the current cycle; 0 before the simulation starts.
func (s *Scoreboard) Cycle() uint64 {
	return s.cycle
}

// Started reports whether the simulation is running.
func (s *Scoreboard) Started() bool {
	return s.started
}

// Len returns the number of instructions.
func (s *Scoreboard) Len() int {
	return len(s.instructions)
}

// Instruction returns a copy of instruction i.
func (s *Scoreboard) Instruction(i int) (Instruction, bool) {
	if !s.validIndex(i) {
		return Instruction{}, false
	}
	return s.instructions[i], true
}

// PendingActions returns a copy of the current pending-action set.
func (s *Scoreboard) PendingActions() ActionSet {
	return s.pending.Clone()
}

// Stats returns the progress counters.
func (s *Scoreboard) Stats() Stats {
	st := s.stats
	st.Cycles = s.cycle
	return st
}

// Done reports whether every instruction has written its result.
func (s *Scoreboard) Done() bool {
	if !s.started || len(s.instructions) == 0 {
		return false
	}
	for _, inst := range s.instructions {
		if !inst.Status.Reached(StageWriteResult) {
			return false
		}
	}
	return true
}

func (s *Scoreboard) validIndex(i int) bool {
	return i >= 0 && i < len(s.instructions)
}

// AddInstruction appends an instruction with an empty status and returns
// its index.
func (s *Scoreboard) AddInstruction(inst insts.Instruction) (int, error) {
	if s.started {
		return -1, fmt.Errorf("cannot add instructions: %w", ErrSimulationRunning)
	}
	if err := inst.Validate(); err != nil {
		return -1, fmt.Errorf("%w: %w", ErrInvalidInstruction, err)
	}

	s.instructions = append(s.instructions, Instruction{Instruction: inst})
	return len(s.instructions) - 1, nil
}

// RemoveInstruction deletes instruction i.
func (s *Scoreboard) RemoveInstruction(i int) error {
	if s.started {
		return fmt.Errorf("cannot remove instructions: %w", ErrSimulationRunning)
	}
	if !s.validIndex(i) {
		return fmt.Errorf("remove %d: %w", i, ErrIndexOutOfRange)
	}

	s.instructions = append(s.instructions[:i], s.instructions[i+1:]...)
	return nil
}

// ReorderInstructions moves instruction from to position to, shifting the
// instructions in between.
func (s *Scoreboard) ReorderInstructions(from, to int) error {
	if s.started {
		return fmt.Errorf("cannot reorder instructions: %w", ErrSimulationRunning)
	}
	if !s.validIndex(from) || !s.validIndex(to) {
		return fmt.Errorf("reorder %d to %d: %w", from, to, ErrIndexOutOfRange)
	}

	moved := s.instructions[from]
	s.instructions = append(s.instructions[:from], s.instructions[from+1:]...)
	s.instructions = append(s.instructions[:to],
		append([]Instruction{moved}, s.instructions[to:]...)...)
	return nil
}

// StartSimulation freezes the instruction list, moves to cycle 1 and
// computes the first pending-action set.
func (s *Scoreboard) StartSimulation() error {
	if s.started {
		return fmt.Errorf("cannot start: %w", ErrSimulationRunning)
	}
	if len(s.instructions) == 0 {
		return ErrNoInstructions
	}

	s.started = true
	s.cycle = 1
	s.refreshPending()

	s.logger.V(1).Info("simulation started", "instructions", len(s.instructions))
	return nil
}

// StopSimulation discards all progress and returns to edit mode. The
// instruction list is kept.
func (s *Scoreboard) StopSimulation() {
	s.resetMachine()
}

// Reset stops the simulation and empties the instruction list.
func (s *Scoreboard) Reset() {
	s.instructions = nil
	s.resetMachine()
}

// Snapshot is a read-only deep copy of the scoreboard state.
type Snapshot struct {
	Cycle        uint64
	Started      bool
	Instructions []Instruction
	Units        []FunctionalUnit
	Registers    RegisterStatus
	Pending      []Action
}

// Snapshot returns a deep copy of the current state.
func (s *Scoreboard) Snapshot() Snapshot {
	return Snapshot{
		Cycle:        s.cycle,
		Started:      s.started,
		Instructions: append([]Instruction(nil), s.instructions...),
		Units:        append([]FunctionalUnit(nil), s.units...),
		Registers:    s.registers.Clone(),
		Pending:      s.pending.Sorted(),
	}
}
