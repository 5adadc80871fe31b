package bbvm

import "github.com/christianparpart/evmone/evm"

// Interpreter runs EVM bytecode against a Host, reusing one Analyzer (and
// its analysis cache) across invocations — the bbvm equivalent of lfvm's
// top-level Interpreter/Converter pairing.
type Interpreter struct {
	analyzer *Analyzer
}

// NewInterpreter constructs an Interpreter with its own analysis cache.
func NewInterpreter(config AnalysisConfig) *Interpreter {
	return &Interpreter{analyzer: NewAnalyzer(config)}
}

// Execute runs one call frame to completion and reports its outcome. It
// never returns a non-nil error itself: every failure mode the spec defines
// is reported through the returned Result's Status (spec §7).
func (in *Interpreter) Execute(params evm.Parameters) (evm.Result, error) {
	analysis := in.analyzer.Analyze(params.Revision, params.Code, params.CodeHash)
	c := newContext(params, analysis, params.Context)
	defer c.release()

	run(c)

	return buildResult(c), nil
}

// run steps c until it halts or fails. Each step dispatches through
// dispatchTable, except for the two pseudo-opcodes BEGINBLOCK and the
// undefined-instruction marker, which sit above the table's 0x100 range
// and are handled inline.
func run(c *context) {
	instrs := c.analysis.Instructions
	for c.pc >= 0 && c.pc < len(instrs) {
		instr := instrs[c.pc]

		var err error
		switch instr.Opcode {
		case opBeginBlock:
			err = execBeginBlock(c, instr)
		case opUndefined:
			err = fnUndefined(c, instr)
		default:
			err = dispatchTable[instr.Opcode](c, instr)
		}

		if err != nil {
			c.fail(statusForError(err))
			break
		}
		if c.halted {
			break
		}
		if c.jumped {
			c.jumped = false
			continue
		}
		c.pc++
	}
}

// execBeginBlock performs the block-wide precheck described in spec §4.4:
// the block's entire gas cost is charged, and its stack requirements are
// checked, once on entry rather than once per instruction inside it.
func execBeginBlock(c *context, instr Instruction) error {
	block := &c.analysis.Blocks[instr.Arg]
	if c.gas < block.GasCost {
		return errOutOfGas
	}
	if c.stack.len() < block.StackReq {
		return errStackUnderflow
	}
	if c.stack.len()+block.StackMax > maxStackSize {
		return errStackOverflow
	}
	c.gas -= block.GasCost
	c.currentBlockGas = block.GasCost
	return nil
}

// buildResult marshals the final context state into a Result. Per spec
// §4.6/§7, gas_left and output are only meaningful on success or revert;
// every other status reports gas_left as 0.
func buildResult(c *context) evm.Result {
	if c.status.IsSuccessOrRevert() {
		return evm.Result{
			Status:    c.status,
			GasLeft:   c.gas,
			GasRefund: c.refund,
			Output:    c.output,
		}
	}
	return evm.Result{Status: c.status}
}
