package bbvm

import "github.com/christianparpart/evmone/evm"

// Dynamic-gas constants. Named and valued the way the teacher's gas.go
// names its own EIP-tagged constants, trimmed to the Frontier..Istanbul
// range (no EIP-2929/Berlin access-list surcharges).
const (
	copyWordGas int64 = 3
	sha3WordGas int64 = 6
	logDataGas  int64 = 8
	logTopicGas int64 = 375

	expByteGasFrontier       int64 = 10
	expByteGasSpuriousDragon int64 = 50

	callStipend          int64 = 2300
	callValueTransferGas int64 = 9000
	callNewAccountGas    int64 = 25000

	selfdestructRefundGas int64 = 24000

	sstoreSetGasFrontier   int64 = 20000
	sstoreResetGasFrontier int64 = 5000
	sstoreClearRefundFrontier int64 = 15000

	sstoreSentryGasEIP2200            int64 = 2300
	sstoreSetGasEIP2200               int64 = 20000
	sstoreResetGasEIP2200             int64 = 5000
	sstoreClearsScheduleRefundEIP2200 int64 = 15000
	sloadGasConstantinople            int64 = 200
	sloadGasIstanbul                  int64 = 800

	create2HashWordGas int64 = 6
)

// expGas returns the dynamic per-byte surcharge for EXP's exponent,
// spec §4.5: 10 gas/byte before Spurious Dragon, 50 gas/byte from
// Spurious Dragon onward (EIP-160).
func expGas(rev evm.Revision, exponentByteLen int) int64 {
	perByte := expByteGasFrontier
	if rev.AtLeast(evm.SpuriousDragon) {
		perByte = expByteGasSpuriousDragon
	}
	return perByte * int64(exponentByteLen)
}

// copyGas prices the dynamic portion of *COPY opcodes: 3 gas per word
// copied, in addition to any memory-expansion cost.
func copyGas(size uint64) int64 {
	return copyWordGas * int64(evm.SizeInWords(size))
}

// sha3Gas prices the dynamic portion of SHA3/KECCAK256: 6 gas per word
// hashed, in addition to any memory-expansion cost.
func sha3Gas(size uint64) int64 {
	return sha3WordGas * int64(evm.SizeInWords(size))
}

// logDynamicGas prices the dynamic portion of LOGn: 8 gas per byte of data.
// The 375 gas base and the 375 gas per topic are part of each LOGn's static
// table entry.
func logDynamicGas(size uint64) int64 {
	return logDataGas * int64(size)
}

// create2Gas prices CREATE2's additional hashing cost over CREATE.
func create2Gas(initCodeSize uint64) int64 {
	return create2HashWordGas * int64(evm.SizeInWords(initCodeSize))
}

// sstoreGas returns the gas charge and refund delta for an SSTORE whose
// write produced status, following the active revision's schedule:
// Frontier..Byzantium and Petersburg use the flat current/new-value
// schedule; Constantinople (EIP-1283) and Istanbul-and-later (EIP-2200)
// use net-gas metering keyed off the original/current/new triple the host
// encodes into status (see evm.GetStorageStatus). Petersburg deliberately
// falls back to the flat schedule: it reverted EIP-1283 wholesale after
// it was found to interact badly with reentrancy guards.
func sstoreGas(rev evm.Revision, status evm.StorageStatus) (gas int64, refundDelta int64) {
	switch {
	case rev == evm.Constantinople:
		return sstoreGasNetMetering(status, sloadGasConstantinople)
	case rev.AtLeast(evm.Istanbul):
		return sstoreGasNetMetering(status, sloadGasIstanbul)
	default:
		return sstoreGasFlat(status)
	}
}

func sstoreGasFlat(status evm.StorageStatus) (gas int64, refundDelta int64) {
	switch status {
	case evm.StorageAdded, evm.StorageDeletedAdded, evm.StorageDeletedRestored:
		return sstoreSetGasFrontier, 0
	case evm.StorageDeleted, evm.StorageModifiedDeleted, evm.StorageAddedDeleted:
		return sstoreResetGasFrontier, sstoreClearRefundFrontier
	default: // StorageAssigned, StorageModified, StorageModifiedRestored
		return sstoreResetGasFrontier, 0
	}
}

func sstoreGasNetMetering(status evm.StorageStatus, sloadGas int64) (gas int64, refundDelta int64) {
	switch status {
	case evm.StorageAssigned:
		return sloadGas, 0
	case evm.StorageAdded:
		return sstoreSetGasEIP2200, 0
	case evm.StorageDeleted:
		return sstoreResetGasEIP2200, sstoreClearsScheduleRefundEIP2200
	case evm.StorageModified:
		return sstoreResetGasEIP2200, 0
	case evm.StorageDeletedAdded:
		return sloadGas, -sstoreClearsScheduleRefundEIP2200
	case evm.StorageModifiedDeleted:
		return sloadGas, sstoreClearsScheduleRefundEIP2200
	case evm.StorageDeletedRestored:
		return sloadGas, sstoreResetGasEIP2200 - sloadGas - sstoreClearsScheduleRefundEIP2200
	case evm.StorageAddedDeleted:
		return sloadGas, sstoreSetGasEIP2200 - sloadGas
	case evm.StorageModifiedRestored:
		return sloadGas, sstoreResetGasEIP2200 - sloadGas
	default:
		return sloadGas, 0
	}
}

// callGas implements the 63/64 forwarding rule (EIP-150): of the gas
// remaining after charging the call's base/access/value/new-account costs,
// at most all-but-one-64th may be forwarded to the callee, further capped
// by the caller-requested amount.
func callGas(availableGas, requestedGas int64) int64 {
	forwardable := availableGas - availableGas/64
	if requestedGas >= 0 && requestedGas < forwardable {
		return requestedGas
	}
	return forwardable
}

// selfdestructGas prices SELFDESTRUCT's new-account surcharge: from
// Tangerine Whistle onward, destroying an account with a nonzero balance
// into a not-yet-existing beneficiary costs an extra callNewAccountGas charge (EIP-150
// introduced the base 5000 gas cost already captured in the static table;
// this add-on was introduced alongside it).
func selfdestructGas(rev evm.Revision, beneficiaryExists bool, transfersValue bool) int64 {
	if rev.AtLeast(evm.TangerineWhistle) && !beneficiaryExists && transfersValue {
		return callNewAccountGas
	}
	return 0
}
