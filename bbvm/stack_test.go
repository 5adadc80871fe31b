package bbvm

import (
	"testing"

	"github.com/holiman/uint256"
)

func TestStack_PushPop(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	one := uint256.NewInt(1)
	two := uint256.NewInt(2)
	s.push(one)
	s.push(two)

	if want, got := 2, s.len(); want != got {
		t.Fatalf("len() = %d, want %d", got, want)
	}
	if got := s.pop(); !got.Eq(two) {
		t.Errorf("pop() = %v, want %v", got, two)
	}
	if got := s.pop(); !got.Eq(one) {
		t.Errorf("pop() = %v, want %v", got, one)
	}
	if want, got := 0, s.len(); want != got {
		t.Errorf("len() = %d, want %d", got, want)
	}
}

func TestStack_PeekDoesNotRemove(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.push(uint256.NewInt(42))
	if got := s.peek(); got.Uint64() != 42 {
		t.Errorf("peek() = %v, want 42", got)
	}
	if want, got := 1, s.len(); want != got {
		t.Errorf("len() = %d, want %d", got, want)
	}
}

func TestStack_PeekN(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.push(uint256.NewInt(10))
	s.push(uint256.NewInt(20))
	s.push(uint256.NewInt(30))

	if got := s.peekN(0); got.Uint64() != 30 {
		t.Errorf("peekN(0) = %v, want 30", got)
	}
	if got := s.peekN(2); got.Uint64() != 10 {
		t.Errorf("peekN(2) = %v, want 10", got)
	}
}

func TestStack_Dup_IsZeroBased(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.push(uint256.NewInt(10))
	s.push(uint256.NewInt(20))
	s.dup(0) // duplicate the top element
	if want, got := 3, s.len(); want != got {
		t.Fatalf("len() = %d, want %d", got, want)
	}
	if got := s.pop(); got.Uint64() != 20 {
		t.Errorf("dup(0) duplicated %v, want 20", got)
	}
}

func TestStack_Swap_IsOneBased(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	s.push(uint256.NewInt(10))
	s.push(uint256.NewInt(20))
	s.swap(1) // swap top with the second element
	if got := s.pop(); got.Uint64() != 10 {
		t.Errorf("after swap(1), top = %v, want 10", got)
	}
	if got := s.pop(); got.Uint64() != 20 {
		t.Errorf("after swap(1), second = %v, want 20", got)
	}
}

func TestStack_PushUndefinedReservesSlot(t *testing.T) {
	s := newStack()
	defer returnStack(s)

	slot := s.pushUndefined()
	slot.SetUint64(7)
	if got := s.pop(); got.Uint64() != 7 {
		t.Errorf("pushUndefined slot = %v, want 7", got)
	}
}

func TestReturnStack_ResetsStackPointer(t *testing.T) {
	s := newStack()
	s.push(uint256.NewInt(1))
	s.push(uint256.NewInt(2))
	returnStack(s)

	reused := newStack()
	defer returnStack(reused)
	if want, got := 0, reused.len(); want != got {
		t.Errorf("len() after reuse = %d, want %d", got, want)
	}
}
