package scoreboard

import (
	"fmt"
	"sort"

	"github.com/sarchlab/scoreboard/insts"
)

// Action is a stage transition for one instruction.
type Action struct {
	Stage Stage
	Index int
}

// String returns the action key, e.g. "read-2".
func (a Action) String() string {
	return fmt.Sprintf("%s-%d", a.Stage.Token(), a.Index)
}

// ActionSet is the set of actions that must be performed in a cycle.
type ActionSet map[Action]struct{}

// Has reports whether the set contains a.
func (s ActionSet) Has(a Action) bool {
	_, ok := s[a]
	return ok
}

// Len returns the number of pending actions.
func (s ActionSet) Len() int {
	return len(s)
}

func (s ActionSet) add(a Action) {
	s[a] = struct{}{}
}

// Clone returns an independent copy.
func (s ActionSet) Clone() ActionSet {
	c := make(ActionSet, len(s))
	for a := range s {
		c[a] = struct{}{}
	}
	return c
}

// Sorted lists the actions ordered by instruction index, then stage.
func (s ActionSet) Sorted() []Action {
	actions := make([]Action, 0, len(s))
	for a := range s {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool {
		if actions[i].Index != actions[j].Index {
			return actions[i].Index < actions[j].Index
		}
		return actions[i].Stage < actions[j].Stage
	})
	return actions
}

// ComputePendingActions derives the pending-action set for the current
// cycle of s. It does not modify s.
func ComputePendingActions(s *Scoreboard) ActionSet {
	pending := ActionSet{}
	if !s.started {
		return pending
	}

	if i, ok := s.issueCandidate(); ok {
		pending.add(Action{Stage: StageIssue, Index: i})
	}

	for i, inst := range s.instructions {
		st := inst.Status
		if !st.Reached(StageIssue) {
			continue
		}

		u := s.unitFor(i)

		if !st.Reached(StageReadOperands) && st.Cycle(StageIssue) < s.cycle {
			if u != nil && u.Rj && u.Rk {
				pending.add(Action{Stage: StageReadOperands, Index: i})
			}
		}

		if st.Reached(StageReadOperands) && !st.Reached(StageExecutionComplete) &&
			st.Cycle(StageReadOperands) < s.cycle {
			if u != nil && u.CyclesRemaining == 0 {
				pending.add(Action{Stage: StageExecutionComplete, Index: i})
			}
		}

		if st.Reached(StageExecutionComplete) && !st.Reached(StageWriteResult) &&
			st.Cycle(StageExecutionComplete) < s.cycle {
			if u != nil && s.warBlocker(u) == nil {
				pending.add(Action{Stage: StageWriteResult, Index: i})
			}
		}
	}

	return pending
}

// issueCandidate returns the instruction that may issue this cycle, if any.
// Issue is in order and at most one instruction issues per cycle.
func (s *Scoreboard) issueCandidate() (int, bool) {
	if s.issuedThisCycle() >= 0 {
		return -1, false
	}

	i := s.firstUnissued()
	if i < 0 {
		return -1, false
	}

	inst := s.instructions[i]
	if s.freeUnit(inst.Op.Unit()) == nil {
		return -1, false
	}
	if s.registers.Claimed(inst.Dest) {
		return -1, false
	}

	return i, true
}

// issuedThisCycle returns the index of the instruction issued in the
// current cycle, or -1.
func (s *Scoreboard) issuedThisCycle() int {
	for i, inst := range s.instructions {
		if inst.Status.Cycle(StageIssue) == s.cycle && s.cycle != 0 {
			return i
		}
	}
	return -1
}

// firstUnissued returns the lowest index that has not issued, or -1.
func (s *Scoreboard) firstUnissued() int {
	for i, inst := range s.instructions {
		if !inst.Status.Reached(StageIssue) {
			return i
		}
	}
	return -1
}

// freeUnit returns the first idle unit of the kind, or nil.
func (s *Scoreboard) freeUnit(kind insts.UnitKind) *FunctionalUnit {
	for i := range s.units {
		if s.units[i].Kind == kind && !s.units[i].Busy {
			return &s.units[i]
		}
	}
	return nil
}

// unitFor returns the busy unit executing instruction i, or nil.
func (s *Scoreboard) unitFor(i int) *FunctionalUnit {
	for k := range s.units {
		if s.units[k].Busy && s.units[k].Inst == i {
			return &s.units[k]
		}
	}
	return nil
}

// unitNamed returns the unit with the given name, or nil.
func (s *Scoreboard) unitNamed(name string) *FunctionalUnit {
	for k := range s.units {
		if s.units[k].Name == name {
			return &s.units[k]
		}
	}
	return nil
}

// warBlocker returns another busy unit that still has to read u's
// destination register, or nil.
func (s *Scoreboard) warBlocker(u *FunctionalUnit) *FunctionalUnit {
	b, _ := s.warConflict(u)
	return b
}

// warConflict is warBlocker plus the operand slot (1 or 2) that still
// needs the register.
func (s *Scoreboard) warConflict(u *FunctionalUnit) (*FunctionalUnit, int) {
	if u.Fi == "" {
		return nil, 0
	}
	for k := range s.units {
		other := &s.units[k]
		if !other.Busy || other == u {
			continue
		}
		if other.Fj == u.Fi && other.Rj {
			return other, 1
		}
		if other.Fk == u.Fi && other.Rk {
			return other, 2
		}
	}
	return nil, 0
}

// refreshPending recomputes the pending-action set and records the hazards
// that keep instructions waiting this cycle.
func (s *Scoreboard) refreshPending() {
	s.pending = ComputePendingActions(s)
	s.recordStalls()
}

func (s *Scoreboard) recordStalls() {
	if i := s.firstUnissued(); i >= 0 && s.issuedThisCycle() < 0 {
		switch s.validator.CanIssue(i).Hazard {
		case HazardStructural:
			s.stats.StructuralStalls++
		case HazardWAW:
			s.stats.WAWStalls++
		}
	}

	for i, inst := range s.instructions {
		st := inst.Status
		switch {
		case st.Reached(StageIssue) && !st.Reached(StageReadOperands):
			if s.validator.CanReadOperands(i).Hazard == HazardRAW {
				s.stats.RAWStalls++
			}
		case st.Reached(StageExecutionComplete) && !st.Reached(StageWriteResult):
			if s.validator.CanWriteResult(i).Hazard == HazardWAR {
				s.stats.WARStalls++
			}
		}
	}
}
