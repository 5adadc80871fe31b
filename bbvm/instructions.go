package bbvm

import (
	"github.com/holiman/uint256"

	"github.com/christianparpart/evmone/evm"
)

// execFn implements one opcode's semantics against the running context. It
// returns a non-nil error to end the step with a failure; a nil return
// means "keep stepping" unless c.halted was also set (RETURN/REVERT/STOP).
// Grounded on lfvm/instructions.go's per-opcode functions, generalized from
// that file's instr-by-instr dispatch to this dispatchTable shape.
type execFn func(c *context, instr Instruction) error

var dispatchTable [0x100]execFn

func init() {
	dispatchTable[opStop] = fnStop
	dispatchTable[opAdd] = fnAdd
	dispatchTable[opMul] = fnMul
	dispatchTable[opSub] = fnSub
	dispatchTable[opDiv] = fnDiv
	dispatchTable[opSDiv] = fnSDiv
	dispatchTable[opMod] = fnMod
	dispatchTable[opSMod] = fnSMod
	dispatchTable[opAddMod] = fnAddMod
	dispatchTable[opMulMod] = fnMulMod
	dispatchTable[opExp] = fnExp
	dispatchTable[opSignExtend] = fnSignExtend

	dispatchTable[opLt] = fnLt
	dispatchTable[opGt] = fnGt
	dispatchTable[opSlt] = fnSlt
	dispatchTable[opSgt] = fnSgt
	dispatchTable[opEq] = fnEq
	dispatchTable[opIsZero] = fnIsZero
	dispatchTable[opAnd] = fnAnd
	dispatchTable[opOr] = fnOr
	dispatchTable[opXor] = fnXor
	dispatchTable[opNot] = fnNot
	dispatchTable[opByte] = fnByte
	dispatchTable[opShl] = fnShl
	dispatchTable[opShr] = fnShr
	dispatchTable[opSar] = fnSar

	dispatchTable[opSha3] = fnSha3

	dispatchTable[opAddress] = fnAddress
	dispatchTable[opBalance] = fnBalance
	dispatchTable[opOrigin] = fnOrigin
	dispatchTable[opCaller] = fnCaller
	dispatchTable[opCallValue] = fnCallValue
	dispatchTable[opCallDataLoad] = fnCallDataLoad
	dispatchTable[opCallDataSize] = fnCallDataSize
	dispatchTable[opCallDataCopy] = fnCallDataCopy
	dispatchTable[opCodeSize] = fnCodeSize
	dispatchTable[opCodeCopy] = fnCodeCopy
	dispatchTable[opGasPrice] = fnGasPrice
	dispatchTable[opExtCodeSize] = fnExtCodeSize
	dispatchTable[opExtCodeCopy] = fnExtCodeCopy
	dispatchTable[opReturnDataSize] = fnReturnDataSize
	dispatchTable[opReturnDataCopy] = fnReturnDataCopy
	dispatchTable[opExtCodeHash] = fnExtCodeHash

	dispatchTable[opBlockHash] = fnBlockHash
	dispatchTable[opCoinbase] = fnCoinbase
	dispatchTable[opTimestamp] = fnTimestamp
	dispatchTable[opNumber] = fnNumber
	dispatchTable[opDifficulty] = fnDifficulty
	dispatchTable[opGasLimit] = fnGasLimit
	dispatchTable[opChainID] = fnChainID
	dispatchTable[opSelfBalance] = fnSelfBalance

	dispatchTable[opPop] = fnPop
	dispatchTable[opMLoad] = fnMLoad
	dispatchTable[opMStore] = fnMStore
	dispatchTable[opMStore8] = fnMStore8
	dispatchTable[opSLoad] = fnSLoad
	dispatchTable[opSStore] = fnSStore
	dispatchTable[opJump] = fnJump
	dispatchTable[opJumpI] = fnJumpI
	dispatchTable[opPC] = fnPC
	dispatchTable[opMSize] = fnMSize
	dispatchTable[opGas] = fnGas

	for op := opPush1; op <= opPush32; op++ {
		if n, ok := isPush(op); ok {
			if n <= 8 {
				dispatchTable[op] = fnPushSmall
			} else {
				dispatchTable[op] = fnPushLarge
			}
		}
	}
	for op := opDup1; op <= opDup16; op++ {
		dispatchTable[op] = fnDup
	}
	for op := opSwap1; op <= opSwap16; op++ {
		dispatchTable[op] = fnSwap
	}
	for op := opLog0; op <= opLog4; op++ {
		dispatchTable[op] = fnLog
	}

	dispatchTable[opCreate] = fnCreate
	dispatchTable[opCall] = fnCall
	dispatchTable[opCallCode] = fnCallCode
	dispatchTable[opReturn] = fnReturn
	dispatchTable[opDelegateCall] = fnDelegateCall
	dispatchTable[opCreate2] = fnCreate2
	dispatchTable[opStaticCall] = fnStaticCall
	dispatchTable[opRevert] = fnRevert
	dispatchTable[opInvalid] = fnInvalid
	dispatchTable[opSelfDestruct] = fnSelfDestruct
}

// --- arithmetic -------------------------------------------------------

func fnStop(c *context, instr Instruction) error {
	c.halt(evm.StatusSuccess)
	return nil
}

func fnAdd(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Add(x, y)
	return nil
}

func fnMul(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Mul(x, y)
	return nil
}

func fnSub(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Sub(x, y)
	return nil
}

func fnDiv(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Div(x, y)
	return nil
}

func fnSDiv(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.SDiv(x, y)
	return nil
}

func fnMod(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Mod(x, y)
	return nil
}

func fnSMod(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.SMod(x, y)
	return nil
}

func fnAddMod(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.pop()
	z := c.stack.peek()
	z.AddMod(x, y, z)
	return nil
}

func fnMulMod(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.pop()
	z := c.stack.peek()
	z.MulMod(x, y, z)
	return nil
}

func fnExp(c *context, instr Instruction) error {
	base := c.stack.pop()
	exponent := c.stack.peek()
	if err := c.useGas(expGas(c.params.Revision, exponent.ByteLen())); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}

func fnSignExtend(c *context, instr Instruction) error {
	byteNum := c.stack.pop()
	value := c.stack.peek()
	value.ExtendSign(value, byteNum)
	return nil
}

// --- comparison / bitwise ----------------------------------------------

func fnLt(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func fnGt(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func fnSlt(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func fnSgt(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func fnEq(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil
}

func fnIsZero(c *context, instr Instruction) error {
	x := c.stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil
}

func fnAnd(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.And(x, y)
	return nil
}

func fnOr(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Or(x, y)
	return nil
}

func fnXor(c *context, instr Instruction) error {
	x := c.stack.pop()
	y := c.stack.peek()
	y.Xor(x, y)
	return nil
}

func fnNot(c *context, instr Instruction) error {
	x := c.stack.peek()
	x.Not(x)
	return nil
}

func fnByte(c *context, instr Instruction) error {
	index := c.stack.pop()
	value := c.stack.peek()
	value.Byte(index)
	return nil
}

func fnShl(c *context, instr Instruction) error {
	shift := c.stack.pop()
	value := c.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func fnShr(c *context, instr Instruction) error {
	shift := c.stack.pop()
	value := c.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func fnSar(c *context, instr Instruction) error {
	shift := c.stack.pop()
	value := c.stack.peek()
	negative := signBit(value)
	if shift.LtUint64(256) {
		value.SRsh(value, uint(shift.Uint64()))
	} else if negative {
		value.SetAllOne()
	} else {
		value.Clear()
	}
	return nil
}

// --- SHA3 ----------------------------------------------------------------

func fnSha3(c *context, instr Instruction) error {
	offsetW := c.stack.pop()
	sizeW := c.stack.peek()
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if err := c.memory.expandMemory(offset, size, c); err != nil {
		return err
	}
	if err := c.useGas(sha3Gas(size)); err != nil {
		return err
	}
	data, err := readMemorySlice(c, offset, size)
	if err != nil {
		return err
	}
	hash := Keccak256(data)
	sizeW.SetBytes32(hash[:])
	return nil
}

// --- environmental ---------------------------------------------------

func fnAddress(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(addressToUint256(c.params.Recipient))
	return nil
}

func fnBalance(c *context, instr Instruction) error {
	addrW := c.stack.peek()
	addr := addressFromWord(addrW)
	addrW.Set(uint256FromValue(c.host.GetBalance(addr)))
	return nil
}

func fnOrigin(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(addressToUint256(c.host.GetTxContext().Origin))
	return nil
}

func fnCaller(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(addressToUint256(c.params.Sender))
	return nil
}

func fnCallValue(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(uint256FromValue(c.params.Value))
	return nil
}

func fnCallDataLoad(c *context, instr Instruction) error {
	offsetW := c.stack.peek()
	var buf [32]byte
	if offsetW.IsUint64() {
		copyFromBytes(buf[:], c.params.Input, offsetW.Uint64())
	}
	offsetW.SetBytes32(buf[:])
	return nil
}

func fnCallDataSize(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Input)))
	return nil
}

func fnCallDataCopy(c *context, instr Instruction) error {
	return genericCopy(c, c.params.Input)
}

func fnCodeSize(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Code)))
	return nil
}

func fnCodeCopy(c *context, instr Instruction) error {
	return genericCopy(c, c.params.Code)
}

// genericCopy implements the common shape of CALLDATACOPY/CODECOPY: pop
// (destOffset, offset, size), expand and charge memory, then copy from src
// zero-padding past its end.
func genericCopy(c *context, src []byte) error {
	destOffsetW := c.stack.pop()
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()
	destOffset, ok := toUint64Checked(destOffsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if err := c.memory.expandMemory(destOffset, size, c); err != nil {
		return err
	}
	if err := c.useGas(copyGas(size)); err != nil {
		return err
	}
	buf := make([]byte, size)
	offset := uint64(0)
	if offsetW.IsUint64() {
		offset = offsetW.Uint64()
	}
	copyFromBytes(buf, src, offset)
	return c.memory.set(destOffset, size, buf)
}

func copyFromBytes(dst, src []byte, offset uint64) {
	if offset >= uint64(len(src)) {
		return
	}
	copy(dst, src[offset:])
}

func fnGasPrice(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(uint256FromValue(c.host.GetTxContext().GasPrice))
	return nil
}

func fnExtCodeSize(c *context, instr Instruction) error {
	addrW := c.stack.peek()
	addr := addressFromWord(addrW)
	addrW.SetUint64(uint64(c.host.GetCodeSize(addr)))
	return nil
}

func fnExtCodeCopy(c *context, instr Instruction) error {
	addrW := c.stack.pop()
	addr := addressFromWord(addrW)
	destOffsetW := c.stack.pop()
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()
	destOffset, ok := toUint64Checked(destOffsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if err := c.memory.expandMemory(destOffset, size, c); err != nil {
		return err
	}
	if err := c.useGas(copyGas(size)); err != nil {
		return err
	}
	buf := make([]byte, size)
	offset := uint64(0)
	if offsetW.IsUint64() {
		offset = offsetW.Uint64()
	}
	if offset < uint64(c.host.GetCodeSize(addr)) {
		c.host.GetCode(addr, int(offset), buf)
	}
	return c.memory.set(destOffset, size, buf)
}

func fnReturnDataSize(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(len(c.returnData)))
	return nil
}

func fnReturnDataCopy(c *context, instr Instruction) error {
	destOffsetW := c.stack.pop()
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()
	destOffset, ok := toUint64Checked(destOffsetW)
	if !ok {
		return errGasUintOverflow
	}
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if offset+size < offset || offset+size > uint64(len(c.returnData)) {
		return errReturnDataOutOfBounds
	}
	if err := c.memory.expandMemory(destOffset, size, c); err != nil {
		return err
	}
	if err := c.useGas(copyGas(size)); err != nil {
		return err
	}
	return c.memory.set(destOffset, size, c.returnData[offset:offset+size])
}

func fnExtCodeHash(c *context, instr Instruction) error {
	addrW := c.stack.peek()
	addr := addressFromWord(addrW)
	if !c.host.AccountExists(addr) {
		addrW.Clear()
		return nil
	}
	addrW.Set(hashToUint256(c.host.GetCodeHash(addr)))
	return nil
}

// --- block ---------------------------------------------------------------

func fnBlockHash(c *context, instr Instruction) error {
	numberW := c.stack.peek()
	if !numberW.IsUint64() {
		numberW.Clear()
		return nil
	}
	numberW.Set(hashToUint256(c.host.GetBlockHash(int64(numberW.Uint64()))))
	return nil
}

func fnCoinbase(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(addressToUint256(c.host.GetTxContext().Coinbase))
	return nil
}

func fnTimestamp(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(c.host.GetTxContext().Timestamp))
	return nil
}

func fnNumber(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(c.host.GetTxContext().BlockNumber))
	return nil
}

func fnDifficulty(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(uint256FromValue(c.host.GetTxContext().Difficulty))
	return nil
}

func fnGasLimit(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(c.host.GetTxContext().GasLimit))
	return nil
}

func fnChainID(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(uint256FromValue(c.host.GetTxContext().ChainID))
	return nil
}

func fnSelfBalance(c *context, instr Instruction) error {
	c.stack.pushUndefined().Set(uint256FromValue(c.host.GetBalance(c.params.Recipient)))
	return nil
}

// --- stack / memory / storage --------------------------------------------

func fnPop(c *context, instr Instruction) error {
	c.stack.pop()
	return nil
}

func fnMLoad(c *context, instr Instruction) error {
	offsetW := c.stack.peek()
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	return c.memory.readWord(offset, offsetW, c)
}

func fnMStore(c *context, instr Instruction) error {
	offsetW := c.stack.pop()
	valueW := c.stack.pop()
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	return c.memory.setWord(offset, valueW, c)
}

func fnMStore8(c *context, instr Instruction) error {
	offsetW := c.stack.pop()
	valueW := c.stack.pop()
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	return c.memory.setByte(offset, byte(valueW.Uint64()), c)
}

func fnSLoad(c *context, instr Instruction) error {
	keyW := c.stack.peek()
	key := keyFromWord(keyW)
	value := c.host.GetStorage(c.params.Recipient, key)
	keyW.Set(uint256FromWord(value))
	return nil
}

func fnSStore(c *context, instr Instruction) error {
	if err := c.requireNotStatic(); err != nil {
		return err
	}
	// EIP-1706: from Istanbul onward, SSTORE refuses to run at all once gas
	// has dropped to the 2300 stipend sentry or below, so a callee cannot
	// drain its stipend down to where net-gas metering would otherwise
	// still allow a write.
	if c.isAtLeast(evm.Istanbul) && c.gas <= sstoreSentryGasEIP2200 {
		return errOutOfGas
	}
	keyW := c.stack.pop()
	valueW := c.stack.pop()
	key := keyFromWord(keyW)
	value := wordFromUint256(valueW)
	status := c.host.SetStorage(c.params.Recipient, key, value)
	gas, refundDelta := sstoreGas(c.params.Revision, status)
	if err := c.useGas(gas); err != nil {
		return err
	}
	c.refund += refundDelta
	return nil
}

func fnJump(c *context, instr Instruction) error {
	dest := c.stack.pop()
	return doJump(c, dest)
}

func fnJumpI(c *context, instr Instruction) error {
	dest := c.stack.pop()
	cond := c.stack.pop()
	if cond.IsZero() {
		return nil
	}
	return doJump(c, dest)
}

func doJump(c *context, dest *uint256.Int) error {
	if !dest.IsUint64() {
		return errInvalidJump
	}
	pos, ok := c.analysis.FindJumpDest(int64(dest.Uint64()))
	if !ok {
		return errInvalidJump
	}
	c.pc = pos
	c.jumped = true
	return nil
}

func fnPC(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(instr.Arg)
	return nil
}

func fnMSize(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(uint64(c.memory.length()))
	return nil
}

// fnGas reports the gas that would remain if this block's cost had been
// charged instruction-by-instruction instead of all at once: the gas left
// after the block-wide charge, plus however much of the block's total cost
// had not yet notionally been spent at this point (SPEC_FULL.md §3).
func fnGas(c *context, instr Instruction) error {
	remaining := c.gas + (c.currentBlockGas - int64(instr.Arg))
	c.stack.pushUndefined().SetUint64(uint64(remaining))
	return nil
}

// --- push / dup / swap -----------------------------------------------

func fnPushSmall(c *context, instr Instruction) error {
	c.stack.pushUndefined().SetUint64(instr.Arg)
	return nil
}

func fnPushLarge(c *context, instr Instruction) error {
	word := c.analysis.Args[instr.Arg]
	c.stack.pushUndefined().SetBytes32(word[:])
	return nil
}

func fnDup(c *context, instr Instruction) error {
	c.stack.dup(int(instr.Arg))
	return nil
}

func fnSwap(c *context, instr Instruction) error {
	c.stack.swap(int(instr.Arg))
	return nil
}

// --- logging ---------------------------------------------------------

func fnLog(c *context, instr Instruction) error {
	if err := c.requireNotStatic(); err != nil {
		return err
	}
	n := int(instr.Arg)
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()

	topics := make([]evm.Hash, n)
	for i := 0; i < n; i++ {
		w := c.stack.pop()
		topics[i] = evm.Hash(w.Bytes32())
	}

	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if err := c.memory.expandMemory(offset, size, c); err != nil {
		return err
	}
	if err := c.useGas(logDynamicGas(size)); err != nil {
		return err
	}
	data, err := readMemorySlice(c, offset, size)
	if err != nil {
		return err
	}

	c.host.EmitLog(evm.Log{Address: c.params.Recipient, Topics: topics, Data: data})
	return nil
}

// --- halting -----------------------------------------------------------

func fnReturn(c *context, instr Instruction) error {
	return haltWithOutput(c, evm.StatusSuccess)
}

func fnRevert(c *context, instr Instruction) error {
	return haltWithOutput(c, evm.StatusRevert)
}

func haltWithOutput(c *context, status evm.StatusCode) error {
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()
	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}
	if err := c.memory.expandMemory(offset, size, c); err != nil {
		return err
	}
	out, err := readMemorySlice(c, offset, size)
	if err != nil {
		return err
	}
	c.output = out
	c.halt(status)
	return nil
}

func fnInvalid(c *context, instr Instruction) error {
	return errInvalidInstruction
}

func fnUndefined(c *context, instr Instruction) error {
	return errUndefinedInstruction
}

func fnSelfDestruct(c *context, instr Instruction) error {
	if err := c.requireNotStatic(); err != nil {
		return err
	}
	beneficiaryW := c.stack.pop()
	beneficiary := addressFromWord(beneficiaryW)
	balance := c.host.GetBalance(c.params.Recipient)
	transfersValue := !uint256FromValue(balance).IsZero()
	beneficiaryExists := c.host.AccountExists(beneficiary)
	if fee := selfdestructGas(c.params.Revision, beneficiaryExists, transfersValue); fee > 0 {
		if err := c.useGas(fee); err != nil {
			return err
		}
	}
	if firstTime := c.host.SelfDestruct(c.params.Recipient, beneficiary); firstTime {
		c.refund += selfdestructRefundGas
	}
	c.halt(evm.StatusSuccess)
	return nil
}

// --- call / create family -------------------------------------------

// toUint64Checked converts a stack word to uint64, failing (rather than
// truncating) when the word does not fit: an offset/size that large could
// never be paid for anyway, so it is reported the same as running out of
// gas for it.
func toUint64Checked(x *uint256.Int) (uint64, bool) {
	if !x.IsUint64() {
		return 0, false
	}
	return x.Uint64(), true
}

// readMemorySlice copies out a memory window as an independent buffer,
// since callees (nested Host.Call, EmitLog) must not observe later
// mutations of this invocation's memory.
func readMemorySlice(c *context, offset, size uint64) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	slice, err := c.memory.getSlice(offset, size, c)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(slice))
	copy(buf, slice)
	return buf, nil
}

func fnCall(c *context, instr Instruction) error       { return genericCall(c, evm.Call, true) }
func fnCallCode(c *context, instr Instruction) error   { return genericCall(c, evm.CallCode, true) }
func fnDelegateCall(c *context, instr Instruction) error {
	return genericCall(c, evm.DelegateCall, false)
}
func fnStaticCall(c *context, instr Instruction) error {
	return genericCall(c, evm.StaticCall, false)
}

// genericCall implements CALL/CALLCODE/DELEGATECALL/STATICCALL: they share
// every step but which of (sender, recipient, value) come from the stack
// versus from the current context, grounded on the pattern
// go-ethereum's core/vm/instructions.go opCall family uses for the same
// four opcodes.
func genericCall(c *context, kind evm.CallKind, hasValue bool) error {
	gasArg := c.stack.pop()
	addrW := c.stack.pop()
	addr := addressFromWord(addrW)

	var value evm.Value
	transfersValue := false
	if hasValue {
		v := c.stack.pop()
		transfersValue = !v.IsZero()
		if transfersValue {
			if err := c.requireNotStatic(); err != nil {
				return err
			}
		}
		value = valueFromUint256(v)
	}

	inOffsetW := c.stack.pop()
	inSizeW := c.stack.pop()
	outOffsetW := c.stack.pop()
	outSizeW := c.stack.pop()

	inOffset, ok := toUint64Checked(inOffsetW)
	if !ok {
		return errGasUintOverflow
	}
	inSize, ok := toUint64Checked(inSizeW)
	if !ok {
		return errGasUintOverflow
	}
	outOffset, ok := toUint64Checked(outOffsetW)
	if !ok {
		return errGasUintOverflow
	}
	outSize, ok := toUint64Checked(outSizeW)
	if !ok {
		return errGasUintOverflow
	}

	if err := c.memory.expandMemory(inOffset, inSize, c); err != nil {
		return err
	}
	if err := c.memory.expandMemory(outOffset, outSize, c); err != nil {
		return err
	}

	if transfersValue {
		if err := c.useGas(callValueTransferGas); err != nil {
			return err
		}
	}
	if kind == evm.Call && transfersValue && !c.host.AccountExists(addr) {
		if err := c.useGas(callNewAccountGas); err != nil {
			return err
		}
	}

	requestedGas := int64(-1)
	if gasArg.IsUint64() {
		if v := gasArg.Uint64(); v <= uint64(1)<<62 {
			requestedGas = int64(v)
		}
	}
	forwarded := callGas(c.gas, requestedGas)

	if c.params.Depth+1 > evm.MaxCallDepth() {
		c.stack.pushUndefined().Clear()
		return nil
	}

	if transfersValue {
		if uint256FromValue(value).Cmp(uint256FromValue(c.host.GetBalance(c.params.Recipient))) > 0 {
			c.stack.pushUndefined().Clear()
			return nil
		}
	}

	if err := c.useGas(forwarded); err != nil {
		return err
	}
	if transfersValue {
		forwarded += callStipend
	}

	input, err := readMemorySlice(c, inOffset, inSize)
	if err != nil {
		return err
	}

	effectiveKind := kind
	if c.params.Static && effectiveKind == evm.Call {
		effectiveKind = evm.StaticCall
	}

	callParams := evm.CallParameters{
		Kind:        effectiveKind,
		CodeAddress: addr,
		Value:       value,
		Input:       input,
		Gas:         forwarded,
	}
	switch kind {
	case evm.Call, evm.StaticCall:
		callParams.Sender = c.params.Recipient
		callParams.Recipient = addr
	case evm.CallCode:
		callParams.Sender = c.params.Recipient
		callParams.Recipient = c.params.Recipient
	case evm.DelegateCall:
		callParams.Sender = c.params.Sender
		callParams.Recipient = c.params.Recipient
		callParams.Value = c.params.Value
	}

	result, callErr := c.host.Call(callParams)
	if callErr != nil {
		c.gas += forwarded
		c.stack.pushUndefined().Clear()
		return nil
	}

	c.gas += result.GasLeft
	c.refund += result.GasRefund
	c.returnData = result.Output

	if copySize := outSize; copySize > 0 {
		if uint64(len(result.Output)) < copySize {
			copySize = uint64(len(result.Output))
		}
		if copySize > 0 {
			if err := c.memory.set(outOffset, copySize, result.Output[:copySize]); err != nil {
				return err
			}
		}
	}

	top := c.stack.pushUndefined()
	if result.Success {
		top.SetOne()
	} else {
		top.Clear()
	}
	return nil
}

func fnCreate(c *context, instr Instruction) error  { return genericCreate(c, evm.Create) }
func fnCreate2(c *context, instr Instruction) error { return genericCreate(c, evm.Create2) }

func genericCreate(c *context, kind evm.CallKind) error {
	if err := c.requireNotStatic(); err != nil {
		return err
	}
	valueW := c.stack.pop()
	offsetW := c.stack.pop()
	sizeW := c.stack.pop()
	var salt evm.Word
	if kind == evm.Create2 {
		saltW := c.stack.pop()
		salt = wordFromUint256(saltW)
	}

	offset, ok := toUint64Checked(offsetW)
	if !ok {
		return errGasUintOverflow
	}
	size, ok := toUint64Checked(sizeW)
	if !ok {
		return errGasUintOverflow
	}

	if err := c.memory.expandMemory(offset, size, c); err != nil {
		return err
	}
	if kind == evm.Create2 {
		if err := c.useGas(create2Gas(size)); err != nil {
			return err
		}
	}

	if c.params.Depth+1 > evm.MaxCallDepth() {
		c.stack.pushUndefined().Clear()
		return nil
	}

	value := valueFromUint256(valueW)
	if uint256FromValue(value).Cmp(uint256FromValue(c.host.GetBalance(c.params.Recipient))) > 0 {
		c.stack.pushUndefined().Clear()
		return nil
	}

	initCode, err := readMemorySlice(c, offset, size)
	if err != nil {
		return err
	}

	forwarded := callGas(c.gas, -1)
	if err := c.useGas(forwarded); err != nil {
		return err
	}

	result, callErr := c.host.Call(evm.CallParameters{
		Kind:   kind,
		Sender: c.params.Recipient,
		Value:  value,
		Input:  initCode,
		Gas:    forwarded,
		Salt:   salt,
	})
	if callErr != nil {
		c.gas += forwarded
		c.stack.pushUndefined().Clear()
		return nil
	}

	c.gas += result.GasLeft
	c.refund += result.GasRefund
	c.returnData = result.Output

	top := c.stack.pushUndefined()
	if result.Success {
		top.Set(addressToUint256(result.CreatedAddress))
	} else {
		top.Clear()
	}
	return nil
}
