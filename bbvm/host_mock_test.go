package bbvm

import "github.com/christianparpart/evmone/evm"

// mockHost is a minimal in-memory evm.Host for exercising the interpreter in
// isolation, grounded on original_source/test/utils/host_mock.hpp's role in
// the teacher's own test suite (evmc's reference mock host).
type mockHost struct {
	balances map[evm.Address]evm.Value
	storage  map[evm.Address]map[evm.Key]evm.Word
	original map[evm.Address]map[evm.Key]evm.Word
	code     map[evm.Address][]byte
	accounts map[evm.Address]bool

	tx evm.TxContext

	logs           []evm.Log
	selfDestructed map[evm.Address]evm.Address

	// call is invoked for every nested Host.Call; nil means "reject".
	call func(evm.CallParameters) (evm.CallResult, error)
}

func newMockHost() *mockHost {
	return &mockHost{
		balances:       map[evm.Address]evm.Value{},
		storage:        map[evm.Address]map[evm.Key]evm.Word{},
		original:       map[evm.Address]map[evm.Key]evm.Word{},
		code:           map[evm.Address][]byte{},
		accounts:       map[evm.Address]bool{},
		selfDestructed: map[evm.Address]evm.Address{},
	}
}

func (h *mockHost) AccountExists(addr evm.Address) bool {
	return h.accounts[addr]
}

func (h *mockHost) GetStorage(addr evm.Address, key evm.Key) evm.Word {
	return h.storage[addr][key]
}

func (h *mockHost) SetStorage(addr evm.Address, key evm.Key, value evm.Word) evm.StorageStatus {
	current := h.storage[addr][key]
	if h.original[addr] == nil {
		h.original[addr] = map[evm.Key]evm.Word{}
	}
	original, tracked := h.original[addr][key]
	if !tracked {
		original = current
		h.original[addr][key] = original
	}
	status := evm.GetStorageStatus(original, current, value)
	if h.storage[addr] == nil {
		h.storage[addr] = map[evm.Key]evm.Word{}
	}
	h.storage[addr][key] = value
	return status
}

func (h *mockHost) GetBalance(addr evm.Address) evm.Value {
	return h.balances[addr]
}

func (h *mockHost) GetCodeSize(addr evm.Address) int {
	return len(h.code[addr])
}

func (h *mockHost) GetCodeHash(addr evm.Address) evm.Hash {
	return Keccak256(h.code[addr])
}

func (h *mockHost) GetCode(addr evm.Address, offset int, buf []byte) int {
	code := h.code[addr]
	if offset >= len(code) {
		return 0
	}
	return copy(buf, code[offset:])
}

func (h *mockHost) SelfDestruct(addr, beneficiary evm.Address) bool {
	_, already := h.selfDestructed[addr]
	h.selfDestructed[addr] = beneficiary
	return !already
}

func (h *mockHost) Call(params evm.CallParameters) (evm.CallResult, error) {
	if h.call == nil {
		return evm.CallResult{}, nil
	}
	return h.call(params)
}

func (h *mockHost) GetTxContext() evm.TxContext {
	return h.tx
}

func (h *mockHost) GetBlockHash(number int64) evm.Hash {
	return evm.Hash{}
}

func (h *mockHost) EmitLog(log evm.Log) {
	h.logs = append(h.logs, log)
}
