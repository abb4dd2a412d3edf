// Package loader reads scoreboard programs from assembler text files.
//
// A program file holds one instruction per line. Blank lines and text after
// '#' or ';' are ignored:
//
//	LD    F6, 34(R2)
//	MULTD F0, F2, F4   ; waits for nothing
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/scoreboard/insts"
)

// Line is one decoded instruction and where it came from.
type Line struct {
	// Number is the 1-based source line.
	Number int
	// Inst is the decoded instruction.
	Inst insts.Instruction
}

// Program represents a loaded program ready for simulation.
type Program struct {
	// Path is the file the program was read from, if any.
	Path string
	// Lines holds the instructions in program order.
	Lines []Line
}

// Instructions returns the instructions in program order.
func (p *Program) Instructions() []insts.Instruction {
	out := make([]insts.Instruction, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = l.Inst
	}
	return out
}

// Load reads and decodes the program file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.Path = path
	return prog, nil
}

// Parse decodes a program from r.
func Parse(r io.Reader) (*Program, error) {
	decoder := insts.NewDecoder()
	prog := &Program{}

	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		inst, err := decoder.Decode(scanner.Text())
		if errors.Is(err, insts.ErrEmptyLine) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", number, err)
		}
		prog.Lines = append(prog.Lines, Line{Number: number, Inst: *inst})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}

	if len(prog.Lines) == 0 {
		return nil, fmt.Errorf("program has no instructions")
	}

	return prog, nil
}
