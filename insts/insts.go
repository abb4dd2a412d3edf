// Package insts provides the instruction catalog used by the scoreboard.
//
// The catalog is pure configuration: every instruction kind names the
// functional-unit category that executes it. Execution latencies live in
// timing/latency so they can be reconfigured without touching the catalog.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode("MULTD F0, F2, F4")
//	fmt.Printf("Op: %v, Unit: %v, Dest: %s\n", inst.Op, inst.Op.Unit(), inst.Dest)
package insts

import (
	"fmt"
	"strconv"
	"strings"
)

// Op represents an instruction kind.
type Op uint8

// Instruction kinds.
const (
	OpUnknown Op = iota
	OpLD
	OpSD
	OpDADD
	OpDSUB
	OpADDD
	OpSUBD
	OpMULTD
	OpDIVD
	OpAND
	OpOR
	OpXOR
)

var opNames = [...]string{
	OpUnknown: "UNKNOWN",
	OpLD:      "LD",
	OpSD:      "SD",
	OpDADD:    "DADD",
	OpDSUB:    "DSUB",
	OpADDD:    "ADDD",
	OpSUBD:    "SUBD",
	OpMULTD:   "MULTD",
	OpDIVD:    "DIVD",
	OpAND:     "AND",
	OpOR:      "OR",
	OpXOR:     "XOR",
}

// AllOps lists every known instruction kind in catalog order.
func AllOps() []Op {
	return []Op{
		OpLD, OpSD, OpDADD, OpDSUB, OpADDD, OpSUBD,
		OpMULTD, OpDIVD, OpAND, OpOR, OpXOR,
	}
}

// String returns the assembler mnemonic of the op.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// ParseOp looks up an op by mnemonic, ignoring case.
func ParseOp(s string) (Op, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, op := range AllOps() {
		if opNames[op] == s {
			return op, true
		}
	}
	return OpUnknown, false
}

// UnitKind is the functional-unit category an op executes on.
type UnitKind uint8

// Functional-unit categories.
const (
	UnitNone UnitKind = iota
	UnitInteger
	UnitFPAdder
	UnitFPMultiplier
	UnitFPDivider
)

var unitNames = [...]string{
	UnitNone:         "None",
	UnitInteger:      "Integer",
	UnitFPAdder:      "FP Adder",
	UnitFPMultiplier: "FP Multiplier",
	UnitFPDivider:    "FP Divider",
}

// AllUnitKinds lists every functional-unit category in bank order.
func AllUnitKinds() []UnitKind {
	return []UnitKind{UnitInteger, UnitFPAdder, UnitFPMultiplier, UnitFPDivider}
}

func (k UnitKind) String() string {
	if int(k) < len(unitNames) {
		return unitNames[k]
	}
	return unitNames[UnitNone]
}

// Unit returns the functional-unit category required by the op.
func (o Op) Unit() UnitKind {
	switch o {
	case OpLD, OpSD, OpDADD, OpDSUB, OpAND, OpOR, OpXOR:
		return UnitInteger
	case OpADDD, OpSUBD:
		return UnitFPAdder
	case OpMULTD:
		return UnitFPMultiplier
	case OpDIVD:
		return UnitFPDivider
	default:
		return UnitNone
	}
}

// IsLoad returns true for LD.
func (o Op) IsLoad() bool { return o == OpLD }

// IsStore returns true for SD.
func (o Op) IsStore() bool { return o == OpSD }

// Instruction is one entry of the program under simulation. Operands are
// symbolic register names; an empty string means the operand is absent.
type Instruction struct {
	Op     Op     // Instruction kind
	Dest   string // Destination register (empty for stores)
	Src1   string // First source; the base register for LD/SD
	Src2   string // Second source; the stored value for SD
	Offset int64  // Address offset for LD/SD
}

// String formats the instruction in assembler syntax.
func (i Instruction) String() string {
	switch i.Op {
	case OpLD:
		return fmt.Sprintf("%s %s, %d(%s)", i.Op, i.Dest, i.Offset, i.Src1)
	case OpSD:
		return fmt.Sprintf("%s %s, %d(%s)", i.Op, i.Src2, i.Offset, i.Src1)
	default:
		if i.Src2 == "" {
			return fmt.Sprintf("%s %s, %s", i.Op, i.Dest, i.Src1)
		}
		return fmt.Sprintf("%s %s, %s, %s", i.Op, i.Dest, i.Src1, i.Src2)
	}
}

// Validate checks that the instruction carries the operands its kind
// requires and that every named register exists.
func (i Instruction) Validate() error {
	if i.Op == OpUnknown || i.Op.Unit() == UnitNone {
		return fmt.Errorf("unknown instruction kind %d", i.Op)
	}

	switch i.Op {
	case OpLD:
		if i.Dest == "" || i.Src1 == "" {
			return fmt.Errorf("%s requires a destination and a base register", i.Op)
		}
		if i.Src2 != "" {
			return fmt.Errorf("%s takes no second source", i.Op)
		}
	case OpSD:
		if i.Src1 == "" || i.Src2 == "" {
			return fmt.Errorf("%s requires a base register and a value register", i.Op)
		}
		if i.Dest != "" {
			return fmt.Errorf("%s takes no destination", i.Op)
		}
	default:
		if i.Dest == "" || i.Src1 == "" || i.Src2 == "" {
			return fmt.Errorf("%s requires a destination and two sources", i.Op)
		}
	}

	for _, r := range []string{i.Dest, i.Src1, i.Src2} {
		if r != "" && !IsRegister(r) {
			return fmt.Errorf("%s: invalid register %q", i.Op, r)
		}
	}

	return nil
}

// NumRegisters is the size of each architectural register file.
const NumRegisters = 32

// Registers returns every architectural register name: F0-F31 then R0-R31.
func Registers() []string {
	regs := make([]string, 0, 2*NumRegisters)
	for i := 0; i < NumRegisters; i++ {
		regs = append(regs, "F"+strconv.Itoa(i))
	}
	for i := 0; i < NumRegisters; i++ {
		regs = append(regs, "R"+strconv.Itoa(i))
	}
	return regs
}

// IsRegister reports whether name is an architectural register.
func IsRegister(name string) bool {
	if len(name) < 2 || (name[0] != 'F' && name[0] != 'R') {
		return false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || strconv.Itoa(n) != name[1:] {
		return false
	}
	return n >= 0 && n < NumRegisters
}

// IsFPRegister reports whether name is a floating-point register.
func IsFPRegister(name string) bool {
	return IsRegister(name) && name[0] == 'F'
}
