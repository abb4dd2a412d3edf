package scoreboard

import "fmt"

// CycleResult reports the outcome of AdvanceCycle.
type CycleResult struct {
	Success bool
	Message string
}

// accept applies the double gate: the validator must allow the action and
// the action must be pending this cycle.
func (s *Scoreboard) accept(op string, stage Stage, i int) *FunctionalUnit {
	if !s.validIndex(i) {
		contractViolation(op, "no instruction at index %d (have %d)", i, len(s.instructions))
	}

	action := Action{Stage: stage, Index: i}
	if !s.validator.Check(stage, i).Valid || !s.pending.Has(action) {
		return nil
	}

	delete(s.pending, action)

	if stage == StageIssue {
		u := s.freeUnit(s.instructions[i].Op.Unit())
		if u == nil {
			contractViolation(op, "no free functional unit for instruction %d", i)
		}
		return u
	}

	u := s.unitFor(i)
	if u == nil {
		contractViolation(op, "no functional unit assigned to instruction %d", i)
	}
	return u
}

// Issue claims a functional unit for instruction i and records its
// destination in the register result table. It returns false when the
// instruction cannot issue this cycle.
func (s *Scoreboard) Issue(i int) bool {
	u := s.accept("issue", StageIssue, i)
	if u == nil {
		return false
	}

	inst := &s.instructions[i]

	u.Busy = true
	u.Op = inst.Op
	u.Inst = i
	u.Fi = inst.Dest
	u.Fj = inst.Src1
	u.Fk = inst.Src2

	// Sources are looked up before the destination is claimed so that an
	// instruction reading its own destination sees the previous producer.
	u.Qj = s.registers.Owner(inst.Src1)
	u.Qk = s.registers.Owner(inst.Src2)
	u.Rj = u.Qj == ""
	u.Rk = u.Qk == ""

	u.CyclesRemaining = s.latencies.GetLatency(inst.Op)

	if inst.Dest != "" {
		s.registers[inst.Dest] = u.Name
	}

	inst.Status[StageIssue] = s.cycle
	s.stats.Issued++

	s.logger.V(1).Info("issue",
		"cycle", s.cycle, "index", i, "inst", inst.String(), "unit", u.Name,
		"qj", u.Qj, "qk", u.Qk)
	return true
}

// ReadOperands consumes both source operands of instruction i.
func (s *Scoreboard) ReadOperands(i int) bool {
	u := s.accept("read operands", StageReadOperands, i)
	if u == nil {
		return false
	}

	if !u.Rj || !u.Rk {
		return false
	}

	u.Rj = false
	u.Rk = false
	s.instructions[i].Status[StageReadOperands] = s.cycle

	s.logger.V(1).Info("read operands", "cycle", s.cycle, "index", i, "unit", u.Name)
	return true
}

// CompleteExecution marks the end of execution for instruction i.
func (s *Scoreboard) CompleteExecution(i int) bool {
	u := s.accept("complete execution", StageExecutionComplete, i)
	if u == nil {
		return false
	}

	if u.CyclesRemaining > 0 {
		return false
	}

	s.instructions[i].Status[StageExecutionComplete] = s.cycle

	s.logger.V(1).Info("execution complete", "cycle", s.cycle, "index", i, "unit", u.Name)
	return true
}

// WriteResult writes the result of instruction i, frees its unit and
// releases every unit waiting on it.
func (s *Scoreboard) WriteResult(i int) bool {
	u := s.accept("write result", StageWriteResult, i)
	if u == nil {
		return false
	}

	if s.warBlocker(u) != nil {
		return false
	}

	s.instructions[i].Status[StageWriteResult] = s.cycle
	s.stats.Completed++

	name := u.Name
	if dest := s.instructions[i].Dest; dest != "" && s.registers[dest] == name {
		s.registers[dest] = ""
	}
	u.clear()

	for k := range s.units {
		other := &s.units[k]
		if !other.Busy {
			continue
		}
		if other.Qj == name {
			other.Qj = ""
			other.Rj = true
		}
		if other.Qk == name {
			other.Qk = ""
			other.Rk = true
		}
	}

	s.logger.V(1).Info("write result", "cycle", s.cycle, "index", i, "unit", name)
	return true
}

// AdvanceCycle moves to the next cycle once every pending action has been
// performed. Units that have read their operands count down one cycle of
// latency, never below zero.
func (s *Scoreboard) AdvanceCycle() CycleResult {
	if !s.started {
		return CycleResult{Message: "Simulation must be started to advance cycles."}
	}
	if n := s.pending.Len(); n > 0 {
		return CycleResult{
			Message: fmt.Sprintf(
				"Cannot advance to next cycle. There are %d pending actions that must be completed first.", n),
		}
	}

	s.cycle++

	for k := range s.units {
		u := &s.units[k]
		if !u.Busy || u.CyclesRemaining == 0 {
			continue
		}
		if s.instructions[u.Inst].Status.Reached(StageReadOperands) {
			u.CyclesRemaining--
		}
	}

	s.refreshPending()

	s.logger.V(1).Info("advance", "cycle", s.cycle, "pending", s.pending.Len())
	return CycleResult{
		Success: true,
		Message: fmt.Sprintf("Advanced to cycle %d", s.cycle),
	}
}
