package scoreboard

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the edit-mode mutators.
var (
	// ErrSimulationRunning is returned when the instruction list is edited
	// after the simulation has started.
	ErrSimulationRunning = errors.New("simulation is running")
	// ErrNoInstructions is returned when starting an empty program.
	ErrNoInstructions = errors.New("no instructions to simulate")
	// ErrIndexOutOfRange is returned for an instruction index that does not
	// exist.
	ErrIndexOutOfRange = errors.New("instruction index out of range")
	// ErrInvalidInstruction is returned when adding a malformed instruction.
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// ContractError is the panic value raised when a caller drives the engine
// in a way its state machine can never allow, such as a stage transition
// for an instruction that owns no functional unit.
type ContractError struct {
	Op  string
	Msg string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("scoreboard: %s: %s", e.Op, e.Msg)
}

func contractViolation(op, format string, args ...any) {
	panic(&ContractError{Op: op, Msg: fmt.Sprintf(format, args...)})
}
