package scoreboard

import (
	"fmt"
	"strings"
)

// Feedback turns scoreboard state into short messages for a learner.
type Feedback struct {
	sb *Scoreboard
}

// NewFeedback creates a feedback generator over sb.
func NewFeedback(sb *Scoreboard) *Feedback {
	return &Feedback{sb: sb}
}

// CurrentState summarises the cycle and the actions possible in it.
func (f *Feedback) CurrentState() string {
	msg := fmt.Sprintf("Currently at cycle %d. ", f.sb.cycle)

	actions := f.PossibleActions()
	if len(actions) == 0 {
		return msg + "No valid actions available. Consider advancing to the next cycle."
	}
	return msg + "Possible actions: " + strings.Join(actions, ", ")
}

// PossibleActions lists every action both gates allow, as "LD - Issue".
func (f *Feedback) PossibleActions() []string {
	var actions []string
	for i, inst := range f.sb.instructions {
		for _, stage := range f.sb.validator.NextValidActions(i) {
			actions = append(actions, fmt.Sprintf("%s - %s", inst.Op, stage))
		}
	}
	return actions
}

// ActionFeedback describes a stage transition that just succeeded.
func (f *Feedback) ActionFeedback(i int, stage Stage) string {
	inst, ok := f.sb.Instruction(i)
	if !ok {
		return ""
	}

	text := inst.Instruction.String()
	cycle := f.sb.cycle

	switch stage {
	case StageIssue:
		return fmt.Sprintf("Successfully issued %s in cycle %d.", text, cycle)
	case StageReadOperands:
		return fmt.Sprintf("Successfully read operands for %s in cycle %d.", text, cycle)
	case StageExecutionComplete:
		return fmt.Sprintf("Execution completed for %s in cycle %d.", text, cycle)
	case StageWriteResult:
		return fmt.Sprintf("Result written for %s in cycle %d.", text, cycle)
	default:
		return fmt.Sprintf("Successfully updated %s instruction to %s at cycle %d.", inst.Op, stage, cycle)
	}
}

// Hint suggests what to do next.
func (f *Feedback) Hint() string {
	sb := f.sb

	if len(sb.instructions) == 0 {
		return "Hint: Add some instructions to get started."
	}
	if !sb.started {
		return "Hint: Start the simulation to begin issuing instructions."
	}
	if sb.Done() {
		return "Hint: Every instruction has written its result. The simulation is complete."
	}

	for i, inst := range sb.instructions {
		if next := sb.validator.NextValidActions(i); len(next) > 0 {
			return fmt.Sprintf("Hint: You can advance the %s instruction to the %s stage.", inst.Op, next[0])
		}
	}

	for _, u := range sb.units {
		if u.Busy && u.CyclesRemaining > 0 {
			return "Hint: There are instructions still executing. " +
				"Advance to the next cycle to decrease remaining execution cycles."
		}
	}

	return "Hint: Consider advancing to the next cycle or checking for WAR/WAW hazards that might be blocking progress."
}
