package bbvm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/holiman/uint256"
)

const maxStackSize = 1024

// stack is the 1024-element, 256-bit-word-wide operand stack. It is a
// fixed-size array to prevent reallocation during execution; the block
// precheck (see BlockInfo) guarantees pop/push calls never over- or
// underflow it, so push/pop themselves do no bounds checking.
//
// Each stack consumes 1024 * 32 bytes = 32KB. To avoid paying that
// allocation on every invocation, stacks are drawn from and returned to a
// package-level pool via newStack/returnStack.
type stack struct {
	data         [maxStackSize]uint256.Int
	stackPointer int
}

func (s *stack) push(d *uint256.Int) {
	s.data[s.stackPointer] = *d
	s.stackPointer++
}

// pushUndefined reserves a new top-of-stack slot and returns a pointer to
// it, letting the caller fill it in place instead of copying a value in.
func (s *stack) pushUndefined() *uint256.Int {
	s.stackPointer++
	return &s.data[s.stackPointer-1]
}

// pop removes and returns a pointer to the top element. The pointer is
// only valid until the next push.
func (s *stack) pop() *uint256.Int {
	s.stackPointer--
	return &s.data[s.stackPointer]
}

func (s *stack) peek() *uint256.Int {
	return &s.data[s.len()-1]
}

// peekN returns the n-th element from the top without removing it; peekN(0)
// is the top element.
func (s *stack) peekN(n int) *uint256.Int {
	return &s.data[s.len()-n-1]
}

func (s *stack) len() int {
	return s.stackPointer
}

// swap exchanges the top element with the n-th element from the top.
func (s *stack) swap(n int) {
	s.data[s.len()-n-1], s.data[s.len()-1] = s.data[s.len()-1], s.data[s.len()-n-1]
}

// dup duplicates the n-th element from the top onto the top of the stack.
func (s *stack) dup(n int) {
	s.data[s.stackPointer] = s.data[s.stackPointer-n-1]
	s.stackPointer++
}

func (s *stack) String() string {
	toHex := func(z *uint256.Int) string {
		b := strings.Builder{}
		b.WriteString("0x")
		bytes := z.Bytes32()
		for i, cur := range bytes {
			b.WriteString(fmt.Sprintf("%02x", cur))
			if (i+1)%8 == 0 {
				b.WriteString(" ")
			}
		}
		return b.String()
	}
	b := strings.Builder{}
	for i := 0; i < s.len(); i++ {
		b.WriteString(fmt.Sprintf("    [%4d] %v\n", s.len()-i-1, toHex(s.peekN(i))))
	}
	return b.String()
}

var stackPool = sync.Pool{
	New: func() interface{} { return &stack{} },
}

// newStack draws an empty stack from the reuse pool. Slots of a reused
// stack may still hold values from earlier use.
func newStack() *stack {
	return stackPool.Get().(*stack)
}

// returnStack resets s and returns it to the pool. A stack may only be
// returned once.
func returnStack(s *stack) {
	s.stackPointer = 0
	stackPool.Put(s)
}
