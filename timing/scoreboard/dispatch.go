package scoreboard

import "fmt"

// Outcome is the result of Perform.
type Outcome struct {
	Success bool
	Message string
}

// Perform validates and applies a single action, the way an interactive
// front end dispatches a click on a stage cell. Hazards and timing
// problems come back as an unsuccessful Outcome carrying the validator's
// explanation. An out-of-range index is an error.
func (s *Scoreboard) Perform(a Action) (Outcome, error) {
	if !s.validIndex(a.Index) {
		return Outcome{}, fmt.Errorf("%s: %w", a, ErrIndexOutOfRange)
	}
	if a.Stage < 0 || a.Stage >= numStages {
		return Outcome{}, fmt.Errorf("unknown stage %d", int(a.Stage))
	}

	st := s.instructions[a.Index].Status
	if st.Reached(a.Stage) {
		return Outcome{Message: fmt.Sprintf(
			"This operation was already completed in cycle %d.", st.Cycle(a.Stage))}, nil
	}

	if verdict := s.validator.Check(a.Stage, a.Index); !verdict.Valid {
		return Outcome{Message: verdict.Message}, nil
	}

	if !s.pending.Has(a) {
		return Outcome{Message: fmt.Sprintf(
			"This action cannot be performed in the current cycle %d.", s.cycle)}, nil
	}

	var ok bool
	switch a.Stage {
	case StageIssue:
		ok = s.Issue(a.Index)
	case StageReadOperands:
		ok = s.ReadOperands(a.Index)
	case StageExecutionComplete:
		ok = s.CompleteExecution(a.Index)
	case StageWriteResult:
		ok = s.WriteResult(a.Index)
	}

	if !ok {
		return Outcome{Message: "Action failed for an unknown reason."}, nil
	}

	return Outcome{Success: true, Message: NewFeedback(s).ActionFeedback(a.Index, a.Stage)}, nil
}
