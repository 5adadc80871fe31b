package bbvm

import "github.com/christianparpart/evmone/evm"

// Package-level sentinel errors, comparable with == and usable with
// errors.Is, following the teacher's ConstError pattern (lfvm/errors.go).
// These never cross the Execute boundary as Go errors: internally they
// drive a step to a evm.StatusCode; callers only ever see the result
// status (spec §7).
const (
	errGasUintOverflow      evm.ConstError = "gas uint64 overflow"
	errInvalidJump          evm.ConstError = "invalid jump destination"
	errOutOfGas             evm.ConstError = "out of gas"
	errReturnDataOutOfBounds evm.ConstError = "return data out of bounds"
	errStackOverflow        evm.ConstError = "stack overflow"
	errStackUnderflow       evm.ConstError = "stack underflow"
	errWriteProtection      evm.ConstError = "write protection"

	// errCallDepthExceeded is never produced internally: genericCall and
	// genericCreate refuse to recurse past evm.MaxCallDepth() by pushing 0
	// onto the caller's own stack rather than failing the caller's frame
	// (spec §7: "caller continues; nested returns 0"). statusForError maps
	// it, but nothing in this package returns it: Execute does not check
	// params.Depth itself.
	errCallDepthExceeded    evm.ConstError = "max call depth exceeded"
	errUndefinedInstruction evm.ConstError = "undefined instruction"
	errInvalidInstruction   evm.ConstError = "invalid instruction"
)

// statusForError maps an internal sentinel error to the public status code
// it should surface as. Errors not covered here (e.g. plain memory-bounds
// fmt.Errorf values) are treated as invalid_memory_access.
func statusForError(err error) evm.StatusCode {
	switch err {
	case errGasUintOverflow, errOutOfGas:
		return evm.StatusOutOfGas
	case errStackOverflow:
		return evm.StatusStackOverflow
	case errStackUnderflow:
		return evm.StatusStackUnderflow
	case errInvalidJump:
		return evm.StatusBadJumpDestination
	case errWriteProtection:
		return evm.StatusStaticModeViolation
	case errCallDepthExceeded:
		return evm.StatusCallDepthExceeded
	case errUndefinedInstruction:
		return evm.StatusUndefinedInstruction
	case errInvalidInstruction:
		return evm.StatusInvalidInstruction
	case errReturnDataOutOfBounds:
		return evm.StatusInvalidMemoryAccess
	default:
		return evm.StatusInvalidMemoryAccess
	}
}
