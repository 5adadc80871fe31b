package bbvm

import "github.com/christianparpart/evmone/evm"

// opInfo is the per-opcode metadata the analyzer consults: base gas cost,
// and stack arity (how many words the opcode pops, and how many it leaves
// behind net of those pops). A gasCost of -1 marks an opcode undefined in
// the active revision.
type opInfo struct {
	gasCost  int64
	stackIn  int
	stackOut int
}

func (o opInfo) defined() bool { return o.gasCost >= 0 }

const undefinedGas int64 = -1

// opTable is a dense, revision-specific lookup indexed by the low 8 bits of
// an OpCode (real opcodes only occupy 0x00-0xff; opBeginBlock is handled
// separately by the analyzer and dispatcher, not through this table).
type opTable [0x100]opInfo

// tableFor returns the opcode metadata table for rev, built once and
// cached. Revisions are additive, so each table starts from its
// predecessor and only the opcodes/costs that actually changed are
// overwritten — mirroring how the teacher's gas.go keeps one base schedule
// (static_gas_prices) and a second table (static_gas_prices_berlin) for the
// deltas introduced by a later revision.
func tableFor(rev evm.Revision) *opTable {
	return revisionTables[clampRevision(rev)]
}

func clampRevision(rev evm.Revision) evm.Revision {
	if rev < evm.Frontier {
		return evm.Frontier
	}
	if rev > evm.Istanbul {
		return evm.Istanbul
	}
	return rev
}

var revisionTables = buildRevisionTables()

func buildRevisionTables() map[evm.Revision]*opTable {
	base := newUndefinedTable()
	applyFrontier(base)

	tables := make(map[evm.Revision]*opTable, 8)
	tables[evm.Frontier] = base

	homestead := *base
	tables[evm.Homestead] = &homestead // DELEGATECALL added, same gas rules otherwise
	applyHomestead(&homestead)

	tangerine := homestead
	tables[evm.TangerineWhistle] = &tangerine
	applyTangerineWhistle(&tangerine)

	spurious := tangerine
	tables[evm.SpuriousDragon] = &spurious
	applySpuriousDragon(&spurious)

	byzantium := spurious
	tables[evm.Byzantium] = &byzantium
	applyByzantium(&byzantium)

	constantinople := byzantium
	tables[evm.Constantinople] = &constantinople
	applyConstantinople(&constantinople)

	petersburg := constantinople
	tables[evm.Petersburg] = &petersburg
	// Petersburg only reverts EIP-1283's SSTORE net-gas metering; the
	// opcode/gas table itself is otherwise identical to Constantinople, so
	// there is nothing to patch here — the SSTORE gas schedule reversal is
	// implemented as a runtime revision check in gas.go, not a table delta,
	// since EIP-1283's whole point was computing a *dynamic* cost from
	// before/after storage values, something this static table can't
	// express for either revision.

	istanbul := petersburg
	tables[evm.Istanbul] = &istanbul
	applyIstanbul(&istanbul)

	return tables
}

func newUndefinedTable() *opTable {
	var t opTable
	for i := range t {
		t[i] = opInfo{gasCost: undefinedGas}
	}
	return &t
}

const (
	gasZero      = 0
	gasBase      = 2
	gasVeryLow   = 3
	gasLow       = 5
	gasMid       = 8
	gasHigh      = 10
	gasExtStep   = 20
	gasExt       = 700 // post-Tangerine-Whistle EXT* base cost
	gasExtFrontier = 20
	gasSha3      = 30
	gasJumpDest  = 1
	gasCall      = 40
	gasCreate    = 32000
	gasLog       = 375
	gasMemory    = 3 // per-word, charged dynamically in memory.go, not here
	gasBalanceFrontier = 20
)

func applyFrontier(t *opTable) {
	set := func(op OpCode, gas int64, in, out int) {
		t[byte(op)] = opInfo{gasCost: gas, stackIn: in, stackOut: out}
	}

	set(opStop, gasZero, 0, 0)
	set(opAdd, gasVeryLow, 2, 1)
	set(opMul, gasLow, 2, 1)
	set(opSub, gasVeryLow, 2, 1)
	set(opDiv, gasLow, 2, 1)
	set(opSDiv, gasLow, 2, 1)
	set(opMod, gasLow, 2, 1)
	set(opSMod, gasLow, 2, 1)
	set(opAddMod, gasMid, 3, 1)
	set(opMulMod, gasMid, 3, 1)
	set(opExp, gasHigh, 2, 1) // dynamic per-byte surcharge added in gas.go
	set(opSignExtend, gasLow, 2, 1)

	set(opLt, gasVeryLow, 2, 1)
	set(opGt, gasVeryLow, 2, 1)
	set(opSlt, gasVeryLow, 2, 1)
	set(opSgt, gasVeryLow, 2, 1)
	set(opEq, gasVeryLow, 2, 1)
	set(opIsZero, gasVeryLow, 1, 1)
	set(opAnd, gasVeryLow, 2, 1)
	set(opOr, gasVeryLow, 2, 1)
	set(opXor, gasVeryLow, 2, 1)
	set(opNot, gasVeryLow, 1, 1)
	set(opByte, gasVeryLow, 2, 1)

	set(opSha3, gasSha3, 2, 1) // dynamic word cost added in gas.go

	set(opAddress, gasBase, 0, 1)
	set(opBalance, gasBalanceFrontier, 1, 1)
	set(opOrigin, gasBase, 0, 1)
	set(opCaller, gasBase, 0, 1)
	set(opCallValue, gasBase, 0, 1)
	set(opCallDataLoad, gasVeryLow, 1, 1)
	set(opCallDataSize, gasBase, 0, 1)
	set(opCallDataCopy, gasVeryLow, 3, 0) // dynamic word cost added in gas.go
	set(opCodeSize, gasBase, 0, 1)
	set(opCodeCopy, gasVeryLow, 3, 0)
	set(opGasPrice, gasBase, 0, 1)
	set(opExtCodeSize, gasExtFrontier, 1, 1)
	set(opExtCodeCopy, gasExtFrontier, 4, 0)

	set(opBlockHash, gasExtStep, 1, 1)
	set(opCoinbase, gasBase, 0, 1)
	set(opTimestamp, gasBase, 0, 1)
	set(opNumber, gasBase, 0, 1)
	set(opDifficulty, gasBase, 0, 1)
	set(opGasLimit, gasBase, 0, 1)

	set(opPop, gasBase, 1, 0)
	set(opMLoad, gasVeryLow, 1, 1)
	set(opMStore, gasVeryLow, 2, 0)
	set(opMStore8, gasVeryLow, 2, 0)
	set(opSLoad, 50, 1, 1)
	set(opSStore, 0, 2, 0) // fully dynamic, computed in gas.go
	set(opJump, gasMid, 1, 0)
	set(opJumpI, 10, 2, 0)
	set(opPC, gasBase, 0, 1)
	set(opMSize, gasBase, 0, 1)
	set(opGas, gasBase, 0, 1)
	set(opJumpDest, gasJumpDest, 0, 0)

	for i := 0; i < 32; i++ {
		set(opPush1+OpCode(i), gasVeryLow, 0, 1)
	}
	for i := 0; i < 16; i++ {
		set(opDup1+OpCode(i), gasVeryLow, i+1, i+2)
		set(opSwap1+OpCode(i), gasVeryLow, i+2, i+2)
	}
	for i := 0; i < 5; i++ {
		set(opLog0+OpCode(i), gasLog+logTopicGas*int64(i), 2+i, 0) // base + per-topic; data cost in gas.go
	}

	set(opCreate, gasCreate, 3, 1)
	set(opCall, gasCall, 7, 1)
	set(opCallCode, gasCall, 7, 1)
	set(opReturn, gasZero, 2, 0)
	set(opInvalid, 0, 0, 0)
	set(opSelfDestruct, gasZero, 1, 0)
}

func applyHomestead(t *opTable) {
	t[byte(opDelegateCall)] = opInfo{gasCost: gasCall, stackIn: 6, stackOut: 1}
}

func applyTangerineWhistle(t *opTable) {
	// EIP-150: repriced the "quadratic-spam" opcodes.
	t[byte(opExtCodeSize)] = opInfo{gasCost: gasExt, stackIn: 1, stackOut: 1}
	t[byte(opExtCodeCopy)] = opInfo{gasCost: gasExt, stackIn: 4, stackOut: 0}
	t[byte(opBalance)] = opInfo{gasCost: 400, stackIn: 1, stackOut: 1}
	t[byte(opSLoad)] = opInfo{gasCost: 200, stackIn: 1, stackOut: 1}
	t[byte(opCall)] = opInfo{gasCost: gasExt, stackIn: 7, stackOut: 1}
	t[byte(opCallCode)] = opInfo{gasCost: gasExt, stackIn: 7, stackOut: 1}
	t[byte(opDelegateCall)] = opInfo{gasCost: gasExt, stackIn: 6, stackOut: 1}
	t[byte(opSelfDestruct)] = opInfo{gasCost: 5000, stackIn: 1, stackOut: 0}
}

func applySpuriousDragon(t *opTable) {
	// EIP-160/161/170: no static-table change. The EXP per-byte cost change
	// is applied in gas.go; the contract-size limit is not enforced in this
	// package.
}

func applyByzantium(t *opTable) {
	t[byte(opReturnDataSize)] = opInfo{gasCost: gasBase, stackIn: 0, stackOut: 1}
	t[byte(opReturnDataCopy)] = opInfo{gasCost: gasVeryLow, stackIn: 3, stackOut: 0}
	t[byte(opStaticCall)] = opInfo{gasCost: gasExt, stackIn: 6, stackOut: 1}
	t[byte(opRevert)] = opInfo{gasCost: gasZero, stackIn: 2, stackOut: 0}
}

func applyConstantinople(t *opTable) {
	t[byte(opShl)] = opInfo{gasCost: gasVeryLow, stackIn: 2, stackOut: 1}
	t[byte(opShr)] = opInfo{gasCost: gasVeryLow, stackIn: 2, stackOut: 1}
	t[byte(opSar)] = opInfo{gasCost: gasVeryLow, stackIn: 2, stackOut: 1}
	t[byte(opExtCodeHash)] = opInfo{gasCost: 400, stackIn: 1, stackOut: 1}
	t[byte(opCreate2)] = opInfo{gasCost: gasCreate, stackIn: 4, stackOut: 1}
}

func applyIstanbul(t *opTable) {
	t[byte(opBalance)] = opInfo{gasCost: 700, stackIn: 1, stackOut: 1}
	t[byte(opExtCodeHash)] = opInfo{gasCost: 700, stackIn: 1, stackOut: 1}
	t[byte(opSLoad)] = opInfo{gasCost: 800, stackIn: 1, stackOut: 1}
	t[byte(opChainID)] = opInfo{gasCost: gasBase, stackIn: 0, stackOut: 1}
	t[byte(opSelfBalance)] = opInfo{gasCost: gasLow, stackIn: 0, stackOut: 1}
}
