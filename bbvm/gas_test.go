package bbvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christianparpart/evmone/evm"
)

func TestExpGas_RevisionGated(t *testing.T) {
	require.Equal(t, int64(10*3), expGas(evm.Frontier, 3))
	require.Equal(t, int64(10*3), expGas(evm.TangerineWhistle, 3))
	require.Equal(t, int64(50*3), expGas(evm.SpuriousDragon, 3))
	require.Equal(t, int64(50*3), expGas(evm.Istanbul, 3))
}

func TestSstoreGas_FlatScheduleByzantium(t *testing.T) {
	gas, refund := sstoreGas(evm.Byzantium, evm.StorageAdded)
	require.Equal(t, int64(20000), gas)
	require.Equal(t, int64(0), refund)

	gas, refund = sstoreGas(evm.Byzantium, evm.StorageDeleted)
	require.Equal(t, int64(5000), gas)
	require.Equal(t, int64(15000), refund)

	gas, refund = sstoreGas(evm.Byzantium, evm.StorageAssigned)
	require.Equal(t, int64(5000), gas)
	require.Equal(t, int64(0), refund)
}

func TestSstoreGas_PetersburgFallsBackToFlat(t *testing.T) {
	gas, refund := sstoreGas(evm.Petersburg, evm.StorageDeleted)
	require.Equal(t, int64(5000), gas)
	require.Equal(t, int64(15000), refund)
}

func TestSstoreGas_ConstantinopleNetMetering(t *testing.T) {
	gas, refund := sstoreGas(evm.Constantinople, evm.StorageAssigned)
	require.Equal(t, int64(sloadGasConstantinople), gas)
	require.Equal(t, int64(0), refund)

	gas, refund = sstoreGas(evm.Constantinople, evm.StorageAdded)
	require.Equal(t, int64(sstoreSetGasEIP2200), gas)
	require.Equal(t, int64(0), refund)
}

func TestSstoreGas_IstanbulNetMetering(t *testing.T) {
	gas, refund := sstoreGas(evm.Istanbul, evm.StorageDeleted)
	require.Equal(t, int64(sstoreResetGasEIP2200), gas)
	require.Equal(t, int64(sstoreClearsScheduleRefundEIP2200), refund)

	gas, refund = sstoreGas(evm.Istanbul, evm.StorageDeletedAdded)
	require.Equal(t, int64(sloadGasIstanbul), gas)
	require.Equal(t, int64(-sstoreClearsScheduleRefundEIP2200), refund)
}

func TestCallGas_63of64Rule(t *testing.T) {
	// all-but-one-64th of 6400 is 6300; uncapped request takes all of it.
	require.Equal(t, int64(6300), callGas(6400, -1))
	// a smaller explicit request is honored as-is.
	require.Equal(t, int64(100), callGas(6400, 100))
	// a request exceeding the forwardable cap is clamped to the cap.
	require.Equal(t, int64(6300), callGas(6400, 6400))
}

func TestSelfdestructGas_NewAccountSurcharge(t *testing.T) {
	require.Equal(t, int64(0), selfdestructGas(evm.Frontier, false, true))
	require.Equal(t, int64(callNewAccountGas), selfdestructGas(evm.TangerineWhistle, false, true))
	require.Equal(t, int64(0), selfdestructGas(evm.TangerineWhistle, true, true))
	require.Equal(t, int64(0), selfdestructGas(evm.TangerineWhistle, false, false))
}
