package evm

// TxContext carries the transaction- and block-scoped values the
// environmental opcodes (ORIGIN, GASPRICE, COINBASE, TIMESTAMP, NUMBER,
// DIFFICULTY, GASLIMIT, CHAINID) read from the host. It corresponds to
// evmc's evmc_tx_context.
type TxContext struct {
	GasPrice   Value
	Origin     Address
	Coinbase   Address
	BlockNumber int64
	Timestamp   int64
	GasLimit    int64
	Difficulty  Value
	ChainID     Value
}

// Host is the capability set the core requires from its collaborator: all
// world-state access and nested-call dispatch. The interpreter treats it as
// an abstract interface so it can be driven by an in-memory mock in tests
// (modeled on evmc's Host interface, see
// _examples/original_source/test/utils/host_mock.hpp) or by a real node's
// state backend in production.
type Host interface {
	// AccountExists reports whether addr is a known account (it may still
	// be empty). The interpreter consults it in every revision: for the
	// CALL and SELFDESTRUCT new-account surcharges and for EXTCODEHASH.
	AccountExists(addr Address) bool

	// GetStorage returns the current value of a storage slot, or the zero
	// Word if unset.
	GetStorage(addr Address, key Key) Word

	// SetStorage writes value to a storage slot and returns the status
	// describing the transition, used to price SSTORE and compute refunds.
	SetStorage(addr Address, key Key, value Word) StorageStatus

	// GetBalance returns the wei balance of addr.
	GetBalance(addr Address) Value

	// GetCodeSize returns the length of addr's code.
	GetCodeSize(addr Address) int

	// GetCodeHash returns the Keccak-256 hash of addr's code.
	GetCodeHash(addr Address) Hash

	// GetCode copies min(len(buf), codeSize-offset) bytes of addr's code
	// starting at offset into buf and returns the number of bytes copied.
	GetCode(addr Address, offset int, buf []byte) int

	// SelfDestruct registers addr for destruction at the end of the
	// transaction, with its remaining balance transferred to beneficiary.
	// It reports whether this is the first time addr was registered in
	// this transaction (used to grant the flat SELFDESTRUCT refund only
	// once per account).
	SelfDestruct(addr, beneficiary Address) bool

	// Call dispatches a nested call or contract creation and runs it to
	// completion synchronously.
	Call(params CallParameters) (CallResult, error)

	// GetTxContext returns the active transaction/block context.
	GetTxContext() TxContext

	// GetBlockHash returns the hash of the block with the given number, or
	// the zero Hash if it is out of the retainable range.
	GetBlockHash(number int64) Hash

	// EmitLog records a LOG0..LOG4 event.
	EmitLog(log Log)
}
