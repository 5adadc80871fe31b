// Package evm defines the host-facing contract types the interpreter core
// in package bbvm is built against: addresses, 32-byte words, the Host
// capability set, and the call/result envelopes. It holds no execution
// logic of its own.
package evm

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address is a 20-byte account address.
type Address [20]byte

// Hash is a 32-byte Keccak-256 digest.
type Hash [32]byte

// Key is a 32-byte storage slot key.
type Key [32]byte

// Word is an opaque 32-byte value, used where neither arithmetic nor
// storage-key semantics apply (e.g. storage values and the CREATE2 salt).
type Word [32]byte

// Value is a 32-byte big-endian integer, used for balances and stack words
// crossing the host boundary.
type Value [32]byte

// Code is raw, immutable contract bytecode.
type Code []byte

func (a Address) String() string { return fmt.Sprintf("0x%x", a[:]) }
func (h Hash) String() string    { return fmt.Sprintf("0x%x", h[:]) }
func (k Key) String() string     { return fmt.Sprintf("0x%x", k[:]) }
func (w Word) String() string    { return fmt.Sprintf("0x%x", w[:]) }
func (v Value) String() string   { return fmt.Sprintf("0x%x", v[:]) }

func (a Address) MarshalText() ([]byte, error) { return bytesToText(a[:]) }
func (a *Address) UnmarshalText(data []byte) error { return textToBytes(a[:], data) }

func (h Hash) MarshalText() ([]byte, error) { return bytesToText(h[:]) }
func (h *Hash) UnmarshalText(data []byte) error { return textToBytes(h[:], data) }

func (v Value) MarshalText() ([]byte, error) { return bytesToText(v[:]) }
func (v *Value) UnmarshalText(data []byte) error { return textToBytes(v[:], data) }

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(dst []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	decoded, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(dst), len(decoded); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(dst, decoded)
	return nil
}
