package bbvm

import (
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/christianparpart/evmone/evm"
)

// memory is the linear, zero-filled byte buffer every invocation owns
// exclusively. It grows only in 32-byte-word increments, and every growth
// is charged via getExpansionCosts before the bytes become readable.
type memory struct {
	store             []byte
	currentMemoryCost int64
}

func newMemory() *memory {
	return &memory{}
}

// maxMemoryExpansionSize bounds memory growth so the quadratic term of the
// expansion-cost formula cannot overflow int64. Same bound geth's
// core/vm/gas_table.go memoryGasCost uses.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

func toValidMemorySize(size uint64) uint64 {
	fullWordsSize := evm.SizeInWords(size) * 32
	if size != 0 && fullWordsSize < size {
		return math.MaxUint64
	}
	return fullWordsSize
}

// getExpansionCosts returns the additional gas cost of growing memory to
// size bytes, implementing cost(w) = 3w + w^2/512 where w is the new size
// in 32-byte words, minus whatever has already been charged.
func (m *memory) getExpansionCosts(size uint64) int64 {
	if m.length() >= size {
		return 0
	}
	size = toValidMemorySize(size)
	if size > maxMemoryExpansionSize {
		return math.MaxInt64
	}
	words := evm.SizeInWords(size)
	newCost := int64((words*words)/512 + 3*words)
	return newCost - m.currentMemoryCost
}

// expandMemory grows memory to cover [offset, offset+size), charging the
// expansion cost against c first. A no-op if size is 0 or memory is
// already large enough.
func (m *memory) expandMemory(offset, size uint64, c *context) error {
	if size == 0 {
		return nil
	}
	needed := offset + size
	if needed < offset {
		return errGasUintOverflow
	}
	if m.length() < needed {
		fee := m.getExpansionCosts(needed)
		if err := c.useGas(fee); err != nil {
			return err
		}
		m.expandMemoryWithoutCharging(needed)
	}
	return nil
}

func (m *memory) expandMemoryWithoutCharging(needed uint64) {
	needed = toValidMemorySize(needed)
	size := m.length()
	if size < needed {
		m.currentMemoryCost += m.getExpansionCosts(needed)
		m.store = append(m.store, make([]byte, needed-size)...)
	}
}

func (m *memory) length() uint64 {
	return uint64(len(m.store))
}

func (m *memory) setByte(offset uint64, value byte, c *context) error {
	if err := m.expandMemory(offset, 1, c); err != nil {
		return err
	}
	m.store[offset] = value
	return nil
}

// setWord writes a 256-bit value at offset, big-endian. Manually unrolled
// over the four 64-bit limbs of uint256.Int instead of calling
// value.WriteToSlice, matching the teacher's measured 7x speedup.
func (m *memory) setWord(offset uint64, value *uint256.Int, c *context) error {
	if err := m.expandMemory(offset, 32, c); err != nil {
		return err
	}
	dest := m.store[offset : offset+32]
	dest[31] = byte(value[0])
	dest[30] = byte(value[0] >> 8)
	dest[29] = byte(value[0] >> 16)
	dest[28] = byte(value[0] >> 24)
	dest[27] = byte(value[0] >> 32)
	dest[26] = byte(value[0] >> 40)
	dest[25] = byte(value[0] >> 48)
	dest[24] = byte(value[0] >> 56)

	dest[23] = byte(value[1])
	dest[22] = byte(value[1] >> 8)
	dest[21] = byte(value[1] >> 16)
	dest[20] = byte(value[1] >> 24)
	dest[19] = byte(value[1] >> 32)
	dest[18] = byte(value[1] >> 40)
	dest[17] = byte(value[1] >> 48)
	dest[16] = byte(value[1] >> 56)

	dest[15] = byte(value[2])
	dest[14] = byte(value[2] >> 8)
	dest[13] = byte(value[2] >> 16)
	dest[12] = byte(value[2] >> 24)
	dest[11] = byte(value[2] >> 32)
	dest[10] = byte(value[2] >> 40)
	dest[9] = byte(value[2] >> 48)
	dest[8] = byte(value[2] >> 56)

	dest[7] = byte(value[3])
	dest[6] = byte(value[3] >> 8)
	dest[5] = byte(value[3] >> 16)
	dest[4] = byte(value[3] >> 24)
	dest[3] = byte(value[3] >> 32)
	dest[2] = byte(value[3] >> 40)
	dest[1] = byte(value[3] >> 48)
	dest[0] = byte(value[3] >> 56)
	return nil
}

func (m *memory) set(offset, size uint64, value []byte) error {
	if size > 0 {
		if offset+size < offset {
			return errGasUintOverflow
		}
		if offset+size > m.length() {
			return fmt.Errorf("memory too small, size %d, attempted to write %d bytes at %d", m.length(), size, offset)
		}
		copy(m.store[offset:offset+size], value)
	}
	return nil
}

func (m *memory) setWithCapacityAndGasCheck(offset, size uint64, value []byte, c *context) error {
	if err := m.expandMemory(offset, size, c); err != nil {
		return err
	}
	return m.set(offset, size, value)
}

// getSlice returns a size-byte window of memory at offset, aliasing the
// underlying buffer. The slice is invalidated by any later memory growth.
func (m *memory) getSlice(offset, size uint64, c *context) ([]byte, error) {
	if err := m.expandMemory(offset, size, c); err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	return m.store[offset : offset+size], nil
}

func (m *memory) readWord(offset uint64, target *uint256.Int, c *context) error {
	data, err := m.getSlice(offset, 32, c)
	if err != nil {
		return err
	}
	target.SetBytes32(data)
	return nil
}

// copyData copies memory starting at offset into target, zero-filling any
// portion past the current high-water mark. It never expands memory or
// charges gas.
func (m *memory) copyData(offset uint64, target []byte) {
	if m.length() < offset {
		clear(target)
		return
	}
	covered := copy(target, m.store[offset:])
	if covered < len(target) {
		clear(target[covered:])
	}
}
