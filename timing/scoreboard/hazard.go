package scoreboard

import "fmt"

// Hazard classifies why a stage transition is not allowed.
type Hazard int

// Hazard kinds.
const (
	HazardNone Hazard = iota
	// HazardState covers calls that make no sense in the current state,
	// such as acting before the simulation starts or repeating a stage.
	HazardState
	// HazardOrder is an attempt to issue out of program order.
	HazardOrder
	// HazardTiming is a stage attempted too early in its cycle.
	HazardTiming
	HazardStructural
	HazardRAW
	HazardWAW
	HazardWAR
	// HazardExecuting means the unit is still counting down its latency.
	HazardExecuting
)

var hazardNames = map[Hazard]string{
	HazardNone:       "none",
	HazardState:      "state",
	HazardOrder:      "order",
	HazardTiming:     "timing",
	HazardStructural: "structural",
	HazardRAW:        "RAW",
	HazardWAW:        "WAW",
	HazardWAR:        "WAR",
	HazardExecuting:  "executing",
}

func (h Hazard) String() string {
	if name, ok := hazardNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hazard(%d)", int(h))
}

// Verdict is the validator's answer to "may this happen now?".
type Verdict struct {
	Valid   bool
	Message string
	Hazard  Hazard
}

var valid = Verdict{Valid: true}

func deny(h Hazard, format string, args ...any) Verdict {
	return Verdict{Message: fmt.Sprintf(format, args...), Hazard: h}
}

var notStarted = Verdict{
	Message: "Simulation must be started to perform actions.",
	Hazard:  HazardState,
}

// Validator re-derives the legality of each stage transition directly from
// the scoreboard state. It never consults the pending-action set, so the
// two can be checked against each other.
type Validator struct {
	sb *Scoreboard
}

// NewValidator creates a validator over sb.
func NewValidator(sb *Scoreboard) *Validator {
	return &Validator{sb: sb}
}

// Check dispatches to the stage-specific query.
func (v *Validator) Check(stage Stage, i int) Verdict {
	switch stage {
	case StageIssue:
		return v.CanIssue(i)
	case StageReadOperands:
		return v.CanReadOperands(i)
	case StageExecutionComplete:
		return v.CanCompleteExecution(i)
	case StageWriteResult:
		return v.CanWriteResult(i)
	default:
		return deny(HazardState, "Unknown stage %v.", stage)
	}
}

func (v *Validator) precheck(i int) (Verdict, bool) {
	if !v.sb.validIndex(i) {
		return deny(HazardState, "No instruction at position %d.", i+1), false
	}
	if !v.sb.started {
		return notStarted, false
	}
	return valid, true
}

// describe names instruction i as "instruction 3 (MULTD)".
func (v *Validator) describe(i int) string {
	if !v.sb.validIndex(i) {
		return "instruction 0 (unknown)"
	}
	return fmt.Sprintf("instruction %d (%s)", i+1, v.sb.instructions[i].Op)
}

// CanIssue checks in-order issue, structural and WAW hazards, and the
// single issue per cycle.
func (v *Validator) CanIssue(i int) Verdict {
	if verdict, ok := v.precheck(i); !ok {
		return verdict
	}

	sb := v.sb
	inst := sb.instructions[i]

	if inst.Status.Reached(StageIssue) {
		return deny(HazardState, "Instruction has already been issued.")
	}

	for j := 0; j < i; j++ {
		if !sb.instructions[j].Status.Reached(StageIssue) {
			return deny(HazardOrder,
				"Cannot issue out of order. Previous instruction at position %d must be issued first.",
				j+1)
		}
	}

	kind := inst.Op.Unit()
	if sb.freeUnit(kind) == nil {
		msg := fmt.Sprintf("No available %s functional unit (structural hazard).", kind)
		for k := range sb.units {
			if sb.units[k].Kind == kind && sb.units[k].Busy {
				msg += fmt.Sprintf(" %s is busy with %s.",
					sb.units[k].Name, v.describe(sb.units[k].Inst))
				break
			}
		}
		return Verdict{Message: msg, Hazard: HazardStructural}
	}

	if owner := sb.registers.Owner(inst.Dest); owner != "" {
		producer := -1
		if u := sb.unitNamed(owner); u != nil {
			producer = u.Inst
		}
		return deny(HazardWAW,
			"Register %s is already scheduled to be written by %s in functional unit %s (WAW hazard).",
			inst.Dest, v.describe(producer), owner)
	}

	if j := sb.issuedThisCycle(); j >= 0 {
		return deny(HazardTiming,
			"Only one instruction can issue per cycle; %s was already issued in cycle %d.",
			v.describe(j), sb.cycle)
	}

	return valid
}

// CanReadOperands checks that the instruction was issued in an earlier
// cycle and that both source operands are available (RAW hazard).
func (v *Validator) CanReadOperands(i int) Verdict {
	if verdict, ok := v.precheck(i); !ok {
		return verdict
	}

	sb := v.sb
	st := sb.instructions[i].Status

	if !st.Reached(StageIssue) {
		return deny(HazardState, "Instruction must be issued before reading operands.")
	}
	if st.Reached(StageReadOperands) {
		return deny(HazardState, "Operands have already been read in cycle %d.",
			st.Cycle(StageReadOperands))
	}
	if st.Cycle(StageIssue) >= sb.cycle {
		return deny(HazardTiming,
			"Cannot read operands in the same cycle as issuing. Must wait until cycle %d.",
			st.Cycle(StageIssue)+1)
	}

	u := sb.unitFor(i)
	if u == nil {
		return deny(HazardState, "No functional unit assigned to this instruction.")
	}

	if !u.Rj {
		return v.rawVerdict(u.Fj, u.Qj)
	}
	if !u.Rk {
		return v.rawVerdict(u.Fk, u.Qk)
	}

	return valid
}

func (v *Validator) rawVerdict(reg, producerUnit string) Verdict {
	producer := -1
	if p := v.sb.unitNamed(producerUnit); p != nil {
		producer = p.Inst
	}
	return deny(HazardRAW,
		"Register %s is not ready yet. It is being produced by %s in functional unit %s. This is a RAW hazard.",
		reg, v.describe(producer), producerUnit)
}

// CanCompleteExecution checks that operands were read in an earlier cycle
// and that the unit has finished counting down its latency.
func (v *Validator) CanCompleteExecution(i int) Verdict {
	if verdict, ok := v.precheck(i); !ok {
		return verdict
	}

	sb := v.sb
	st := sb.instructions[i].Status

	if !st.Reached(StageReadOperands) {
		return deny(HazardState, "Operands must be read before execution can complete.")
	}
	if st.Reached(StageExecutionComplete) {
		return deny(HazardState, "Execution has already been marked as complete.")
	}
	if st.Cycle(StageReadOperands) >= sb.cycle {
		return deny(HazardTiming,
			"Execution cannot complete in the cycle operands are read. Must wait until cycle %d.",
			st.Cycle(StageReadOperands)+1)
	}

	u := sb.unitFor(i)
	if u == nil {
		return deny(HazardState, "No functional unit assigned to this instruction.")
	}
	if u.CyclesRemaining > 0 {
		return deny(HazardExecuting, "Execution not complete. %d cycles remaining.", u.CyclesRemaining)
	}

	return valid
}

// CanWriteResult checks that execution completed in an earlier cycle and
// that no other unit still has to read the destination register (WAR
// hazard).
func (v *Validator) CanWriteResult(i int) Verdict {
	if verdict, ok := v.precheck(i); !ok {
		return verdict
	}

	sb := v.sb
	st := sb.instructions[i].Status

	if !st.Reached(StageExecutionComplete) {
		return deny(HazardState, "Execution must complete before writing the result.")
	}
	if st.Reached(StageWriteResult) {
		return deny(HazardState, "Result has already been written.")
	}
	if st.Cycle(StageExecutionComplete) >= sb.cycle {
		return deny(HazardTiming,
			"Cannot write the result in the cycle execution completes. Must wait until cycle %d.",
			st.Cycle(StageExecutionComplete)+1)
	}

	u := sb.unitFor(i)
	if u == nil {
		return deny(HazardState, "No functional unit assigned to this instruction.")
	}

	if reader, operand := sb.warConflict(u); reader != nil {
		return deny(HazardWAR,
			"Cannot write result due to WAR hazard. Register %s is needed as operand %d by %s which hasn't read its operands yet.",
			u.Fi, operand, v.describe(reader.Inst))
	}

	return valid
}

// NextValidActions returns the stage instruction i may move to now. It is
// empty unless both the validator and the pending-action set agree.
func (v *Validator) NextValidActions(i int) []Stage {
	sb := v.sb
	if !sb.started || !sb.validIndex(i) {
		return nil
	}

	st := sb.instructions[i].Status
	for _, stage := range Stages() {
		if st.Reached(stage) {
			continue
		}
		if sb.pending.Has(Action{Stage: stage, Index: i}) && v.Check(stage, i).Valid {
			return []Stage{stage}
		}
		return nil
	}
	return nil
}

// CanAdvanceCycle reports whether every pending action of the cycle has
// been performed.
func (v *Validator) CanAdvanceCycle() Verdict {
	if !v.sb.started {
		return deny(HazardState, "Simulation must be started to advance cycles.")
	}
	if n := v.sb.pending.Len(); n > 0 {
		return deny(HazardState,
			"There are %d pending actions that must be completed before advancing to the next cycle.", n)
	}
	return valid
}
