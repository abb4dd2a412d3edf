package scoreboard

import (
	"fmt"

	"github.com/sarchlab/scoreboard/insts"
)

// FunctionalUnit is one row of the functional-unit status table.
type FunctionalUnit struct {
	// Name identifies the unit; dependency fields refer to units by name.
	Name string
	// Kind is the category of instructions the unit executes.
	Kind insts.UnitKind

	Busy bool
	Op   insts.Op

	// Fi is the destination register owned by this unit.
	Fi string
	// Fj and Fk are the source registers.
	Fj, Fk string
	// Qj and Qk name the units that still have to produce Fj and Fk.
	Qj, Qk string
	// Rj and Rk are true while an operand is available and not yet read.
	Rj, Rk bool

	// CyclesRemaining counts down the execution latency after operands
	// have been read.
	CyclesRemaining uint64

	// Inst is the index of the instruction occupying the unit, or -1.
	Inst int
}

func newFunctionalUnit(name string, kind insts.UnitKind) FunctionalUnit {
	u := FunctionalUnit{Name: name, Kind: kind}
	u.clear()
	return u
}

// clear returns the unit to its idle state.
func (u *FunctionalUnit) clear() {
	u.Busy = false
	u.Op = insts.OpUnknown
	u.Fi, u.Fj, u.Fk = "", "", ""
	u.Qj, u.Qk = "", ""
	u.Rj, u.Rk = true, true
	u.CyclesRemaining = 0
	u.Inst = -1
}

// unitBank builds a bank with count units of each kind. A
// single unit of a kind is named after the kind; several are numbered.
func unitBank(counts map[insts.UnitKind]int) []FunctionalUnit {
	var units []FunctionalUnit
	for _, kind := range insts.AllUnitKinds() {
		n := counts[kind]
		for i := 1; i <= n; i++ {
			name := kind.String()
			if n > 1 {
				name = fmt.Sprintf("%s %d", kind, i)
			}
			units = append(units, newFunctionalUnit(name, kind))
		}
	}
	return units
}

// RegisterStatus maps every architectural register to the name of the
// functional unit that will write it, or "" when no unit claims it.
type RegisterStatus map[string]string

func newRegisterStatus() RegisterStatus {
	regs := make(RegisterStatus, 2*insts.NumRegisters)
	for _, r := range insts.Registers() {
		regs[r] = ""
	}
	return regs
}

// Owner returns the unit that will write reg, or "".
func (r RegisterStatus) Owner(reg string) string {
	if reg == "" {
		return ""
	}
	return r[reg]
}

// Claimed reports whether some unit is scheduled to write reg.
func (r RegisterStatus) Claimed(reg string) bool {
	return r.Owner(reg) != ""
}

// Clone returns an independent copy.
func (r RegisterStatus) Clone() RegisterStatus {
	c := make(RegisterStatus, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
