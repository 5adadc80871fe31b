package bbvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/christianparpart/evmone/evm"
)

func runCode(t *testing.T, code []byte, gas int64, static bool) evm.Result {
	t.Helper()
	host := newMockHost()
	interp := NewInterpreter(AnalysisConfig{})
	params := evm.Parameters{
		Revision:  evm.Istanbul,
		Gas:       gas,
		Recipient: evm.Address{1},
		Sender:    evm.Address{2},
		Code:      evm.Code(code),
		CodeHash:  Keccak256(code),
		Static:    static,
		Context:   host,
	}
	result, err := interp.Execute(params)
	require.NoError(t, err)
	return result
}

func TestExecute_S1_Stop(t *testing.T) {
	result := runCode(t, []byte{0x00}, 10, false)
	require.Equal(t, evm.StatusSuccess, result.Status)
	require.Equal(t, int64(10), result.GasLeft)
	require.Empty(t, result.Output)
}

func TestExecute_S2_Add(t *testing.T) {
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01, 0x00} // PUSH1 1, PUSH1 2, ADD, STOP
	result := runCode(t, code, 100, false)
	require.Equal(t, evm.StatusSuccess, result.Status)
	require.Equal(t, int64(100-3-3-3), result.GasLeft)
}

func TestExecute_S3_BadJump(t *testing.T) {
	code := []byte{0x60, 0x03, 0x56, 0x00} // PUSH1 3, JUMP, STOP
	result := runCode(t, code, 100, false)
	require.Equal(t, evm.StatusBadJumpDestination, result.Status)
	require.Equal(t, int64(0), result.GasLeft)
}

func TestExecute_S4_ValidJump(t *testing.T) {
	code := []byte{0x60, 0x04, 0x56, 0x00, 0x5b, 0x00} // PUSH1 4, JUMP, STOP, JUMPDEST, STOP
	result := runCode(t, code, 100, false)
	require.Equal(t, evm.StatusSuccess, result.Status)
}

func TestExecute_S5_OutOfGas(t *testing.T) {
	code := []byte{0x60, 0xff} // PUSH1 0xff (dangling code gets a synthetic STOP appended)
	result := runCode(t, code, 2, false)
	require.Equal(t, evm.StatusOutOfGas, result.Status)
	require.Equal(t, int64(0), result.GasLeft)
}

func TestExecute_S6_Revert(t *testing.T) {
	// PUSH1 0xaa, PUSH1 0, MSTORE, PUSH1 0x20, PUSH1 0, REVERT
	code := []byte{0x60, 0xaa, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xfd}
	result := runCode(t, code, 100, false)
	require.Equal(t, evm.StatusRevert, result.Status)
	want := make([]byte, 32)
	want[31] = 0xaa
	require.Equal(t, want, result.Output)
	require.Equal(t, int64(100-3-3-3-3-3-3), result.GasLeft)
}

func TestExecute_S7_StaticViolation(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00} // PUSH1 0, PUSH1 0, SSTORE, STOP
	result := runCode(t, code, 100, true)
	require.Equal(t, evm.StatusStaticModeViolation, result.Status)
	require.Equal(t, int64(0), result.GasLeft)
}

func TestExecute_SStoreSentryGasIstanbul(t *testing.T) {
	// PUSH1 0, PUSH1 0, SSTORE, STOP -- run with just under the 2300 sentry.
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00}
	result := runCode(t, code, 2300, false)
	require.Equal(t, evm.StatusOutOfGas, result.Status)
	require.Equal(t, int64(0), result.GasLeft)
}

func TestExecute_UndefinedOpcodePreConstantinople(t *testing.T) {
	host := newMockHost()
	interp := NewInterpreter(AnalysisConfig{})
	code := []byte{0x1b, 0x00} // SHL, not defined before Constantinople
	params := evm.Parameters{
		Revision:  evm.Byzantium,
		Gas:       100,
		Recipient: evm.Address{1},
		Code:      evm.Code(code),
		CodeHash:  Keccak256(code),
		Context:   host,
	}
	result, err := interp.Execute(params)
	require.NoError(t, err)
	require.Equal(t, evm.StatusUndefinedInstruction, result.Status)
}

func TestExecute_CallDepthRefusesDeeperCall(t *testing.T) {
	host := newMockHost()
	host.accounts[evm.Address{9}] = true
	// PUSH1 0,PUSH1 0,PUSH1 0,PUSH1 0,PUSH1 0,PUSH20 <addr>,PUSH2 0xffff,CALL,STOP
	code := []byte{
		0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00, 0x60, 0x00,
		0x73, 9, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0x61, 0xff, 0xff,
		0xf1,
		0x00,
	}
	interp := NewInterpreter(AnalysisConfig{})
	params := evm.Parameters{
		Revision:  evm.Istanbul,
		Gas:       1_000_000,
		Depth:     evm.MaxCallDepth(),
		Recipient: evm.Address{1},
		Code:      evm.Code(code),
		CodeHash:  Keccak256(code),
		Context:   host,
	}
	result, err := interp.Execute(params)
	require.NoError(t, err)
	require.Equal(t, evm.StatusSuccess, result.Status)
}
