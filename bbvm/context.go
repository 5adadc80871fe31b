package bbvm

import "github.com/christianparpart/evmone/evm"

// context is the mutable runtime state owned exclusively by one Execute
// invocation: stack, memory, gas counter, the cursor into the pre-decoded
// instruction stream, and everything an instruction implementation needs
// to read from or report back to the host. It is never shared across
// invocations or goroutines (spec §3 Execution state, §5 Concurrency).
type context struct {
	params   evm.Parameters
	analysis *Analysis
	host     evm.Host

	stack  *stack
	memory *memory

	gas    int64
	refund int64

	// pc indexes analysis.Instructions. A negative value means "halt": the
	// dispatch loop checks pc < 0 to decide whether to keep stepping.
	pc int

	// jumped is set by JUMP/JUMPI when they reposition pc themselves, so
	// the dispatch loop skips its normal pc++ for that step.
	jumped bool

	status evm.StatusCode
	halted bool

	// currentBlockGas is the full precomputed gas cost of the open block,
	// charged at its BEGINBLOCK. GAS combines it with its own Arg (the
	// block's cost up to and including that GAS) to report the same
	// gas_left a per-instruction metering scheme would (SPEC_FULL.md §3).
	currentBlockGas int64

	// output is the RETURN/REVERT data window of this invocation itself.
	output []byte

	// returnData is the most recent nested call's output, exposed to
	// RETURNDATASIZE/RETURNDATACOPY.
	returnData []byte
}

func newContext(params evm.Parameters, analysis *Analysis, host evm.Host) *context {
	return &context{
		params:   params,
		analysis: analysis,
		host:     host,
		stack:    newStack(),
		memory:   newMemory(),
		gas:      params.Gas,
		pc:       0,
	}
}

func (c *context) release() {
	returnStack(c.stack)
}

// useGas deducts amount from the remaining gas, failing with out_of_gas on
// underflow (spec invariant: gas_left >= 0 on every successful step).
func (c *context) useGas(amount int64) error {
	if amount < 0 {
		return errGasUintOverflow
	}
	if c.gas < amount {
		c.gas = 0
		return errOutOfGas
	}
	c.gas -= amount
	return nil
}

// isAtLeast reports whether the active revision is rev or later.
func (c *context) isAtLeast(rev evm.Revision) bool {
	return c.params.Revision.AtLeast(rev)
}

// requireNotStatic fails with write-protection if the message is static,
// for every state-mutating opcode (spec §4.5/§7: static_mode_violation).
func (c *context) requireNotStatic() error {
	if c.params.Static {
		return errWriteProtection
	}
	return nil
}

// fail transitions the context to a halted, failed state; the pc is
// cleared so the dispatch loop stops stepping.
func (c *context) fail(status evm.StatusCode) {
	c.status = status
	c.halted = true
	c.pc = -1
}

// halt transitions the context to a halted, non-failing state (success or
// revert), preserving whatever output window was set.
func (c *context) halt(status evm.StatusCode) {
	c.status = status
	c.halted = true
	c.pc = -1
}
