package insts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyLine is returned by Decode for blank or comment-only lines.
var ErrEmptyLine = errors.New("empty line")

// Decoder turns assembler text into instructions.
type Decoder struct{}

// NewDecoder creates a new assembler-text decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses a single line of assembler text such as
// "LD F6, 34(R2)", "SD F6, 0(R1)" or "MULTD F0, F2, F4".
// Text after '#' or ';' is ignored.
func (d *Decoder) Decode(line string) (*Instruction, error) {
	line = stripComment(line)
	if line == "" {
		return nil, ErrEmptyLine
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	op, ok := ParseOp(mnemonic)
	if !ok {
		return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	operands := splitOperands(rest)
	inst := &Instruction{Op: op}

	switch op {
	case OpLD, OpSD:
		if len(operands) != 2 {
			return nil, fmt.Errorf("%s expects 2 operands, got %d", op, len(operands))
		}
		offset, base, err := d.decodeAddress(operands[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inst.Offset = offset
		inst.Src1 = base
		if op == OpLD {
			inst.Dest = operands[0]
		} else {
			inst.Src2 = operands[0]
		}
	default:
		if len(operands) != 3 {
			return nil, fmt.Errorf("%s expects 3 operands, got %d", op, len(operands))
		}
		inst.Dest = operands[0]
		inst.Src1 = operands[1]
		inst.Src2 = operands[2]
	}

	if err := inst.Validate(); err != nil {
		return nil, err
	}

	return inst, nil
}

// decodeAddress parses "34(R2)" or the textbook form "34+R2".
func (d *Decoder) decodeAddress(s string) (int64, string, error) {
	var offText, base string

	if open := strings.IndexByte(s, '('); open >= 0 {
		if !strings.HasSuffix(s, ")") {
			return 0, "", fmt.Errorf("malformed address %q", s)
		}
		offText = s[:open]
		base = s[open+1 : len(s)-1]
	} else if plus := strings.IndexByte(s, '+'); plus >= 0 {
		offText = s[:plus]
		base = s[plus+1:]
	} else {
		return 0, "", fmt.Errorf("malformed address %q", s)
	}

	offText = strings.TrimSpace(offText)
	base = strings.TrimSpace(base)

	var offset int64
	if offText != "" {
		v, err := strconv.ParseInt(offText, 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("bad offset %q", offText)
		}
		offset = v
	}

	return offset, base, nil
}

func stripComment(line string) string {
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(strings.ReplaceAll(line, "\t", " "))
}

func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	operands := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.Join(strings.Fields(p), ""))
		operands = append(operands, p)
	}
	return operands
}
