package bbvm

import (
	"github.com/holiman/uint256"

	"github.com/christianparpart/evmone/evm"
)

// addressFromWord extracts the low 20 bytes of a 256-bit stack word as an
// evm.Address, the convention every address-taking opcode (BALANCE,
// EXTCODESIZE, CALL, ...) uses to read an address pushed onto the stack.
func addressFromWord(w *uint256.Int) (addr evm.Address) {
	b := w.Bytes32()
	copy(addr[:], b[12:32])
	return addr
}

func keyFromWord(w *uint256.Int) (key evm.Key) {
	return evm.Key(w.Bytes32())
}

func wordFromUint256(w *uint256.Int) (word evm.Word) {
	return evm.Word(w.Bytes32())
}

func uint256FromWord(w evm.Word) *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

func uint256FromValue(v evm.Value) *uint256.Int {
	return new(uint256.Int).SetBytes32(v[:])
}

func valueFromUint256(i *uint256.Int) evm.Value {
	return evm.Value(i.Bytes32())
}

func hashToUint256(h evm.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(h[:])
}

func addressToUint256(addr evm.Address) *uint256.Int {
	var b [32]byte
	copy(b[12:32], addr[:])
	return new(uint256.Int).SetBytes32(b[:])
}

func signBit(x *uint256.Int) bool {
	return x[3]>>63 == 1
}
