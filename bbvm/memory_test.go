package bbvm

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/christianparpart/evmone/evm"
)

func newTestContext(gas int64) *context {
	return newContext(evm.Parameters{Gas: gas}, &Analysis{}, nil)
}

func TestMemory_ExpandChargesWordRoundedCost(t *testing.T) {
	m := newMemory()
	c := newTestContext(1000)

	if err := m.expandMemory(0, 1, c); err != nil {
		t.Fatalf("expandMemory: %v", err)
	}
	// one byte still rounds up to a full 32-byte word: cost(1 word) = 3.
	if want, got := uint64(32), m.length(); want != got {
		t.Errorf("length() = %d, want %d", got, want)
	}
	if want, got := int64(1000-3), c.gas; want != got {
		t.Errorf("gas = %d, want %d", got, want)
	}
}

func TestMemory_ExpandIsNoopWhenAlreadyLargeEnough(t *testing.T) {
	m := newMemory()
	c := newTestContext(1000)

	if err := m.expandMemory(0, 64, c); err != nil {
		t.Fatalf("expandMemory: %v", err)
	}
	spent := 1000 - c.gas

	if err := m.expandMemory(0, 32, c); err != nil {
		t.Fatalf("expandMemory: %v", err)
	}
	if want, got := int64(1000-spent), c.gas; want != got {
		t.Errorf("second expandMemory charged more gas: gas = %d, want %d", got, want)
	}
}

func TestMemory_ExpandFailsOutOfGas(t *testing.T) {
	m := newMemory()
	c := newTestContext(2)
	if err := m.expandMemory(0, 32, c); err != errOutOfGas {
		t.Errorf("expandMemory error = %v, want %v", err, errOutOfGas)
	}
}

func TestMemory_SetWordRoundTrips(t *testing.T) {
	m := newMemory()
	c := newTestContext(1000)

	value := uint256.NewInt(0x0102030405)
	if err := m.setWord(0, value, c); err != nil {
		t.Fatalf("setWord: %v", err)
	}

	var got uint256.Int
	if err := m.readWord(0, &got, c); err != nil {
		t.Fatalf("readWord: %v", err)
	}
	if !got.Eq(value) {
		t.Errorf("readWord() = %v, want %v", &got, value)
	}
}

func TestMemory_SetByte(t *testing.T) {
	m := newMemory()
	c := newTestContext(1000)

	if err := m.setByte(5, 0xaa, c); err != nil {
		t.Fatalf("setByte: %v", err)
	}
	slice, err := m.getSlice(0, 32, c)
	if err != nil {
		t.Fatalf("getSlice: %v", err)
	}
	if slice[5] != 0xaa {
		t.Errorf("store[5] = %x, want 0xaa", slice[5])
	}
}

func TestMemory_SetRequiresPriorExpansion(t *testing.T) {
	m := newMemory()
	if err := m.set(0, 4, []byte{1, 2, 3, 4}); err == nil {
		t.Error("set into unexpanded memory should fail")
	}
}

func TestMemory_CopyDataZeroFillsPastHighWaterMark(t *testing.T) {
	m := newMemory()
	c := newTestContext(1000)
	if err := m.expandMemory(0, 32, c); err != nil {
		t.Fatalf("expandMemory: %v", err)
	}

	target := make([]byte, 8)
	for i := range target {
		target[i] = 0xff
	}
	// offset 28 + len(target) 8 runs 4 bytes past the 32-byte high-water
	// mark; those bytes must come back zeroed rather than left as 0xff.
	m.copyData(28, target)
	for i, b := range target {
		if b != 0 {
			t.Errorf("target[%d] = %x, want 0", i, b)
		}
	}
}
